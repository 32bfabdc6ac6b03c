package backend

import (
	"context"
	"fmt"

	"github.com/amishk599/jobseeker/internal/model"
)

// ExperienceOrder is the order of the resume's experience blocks. Hidden
// experiences stay in the source but are left out of the compiled PDF.
type ExperienceOrder struct {
	Order  []string `json:"experience_order"`
	Hidden []string `json:"hidden_experiences"`
}

// IsHidden reports whether the named experience is hidden.
func (o ExperienceOrder) IsHidden(name string) bool {
	for _, h := range o.Hidden {
		if h == name {
			return true
		}
	}
	return false
}

type experienceReply struct {
	ExperienceOrder
	Error string `json:"error"`
}

// ExperienceOrder returns the current experience order parsed from the
// resume source.
func (c *Client) ExperienceOrder(ctx context.Context) (ExperienceOrder, error) {
	var reply experienceReply
	if err := c.GetJSON(ctx, c.customizer("/get-current-experience-order"), &reply); err != nil {
		return ExperienceOrder{}, fmt.Errorf("experience order: %w", err)
	}
	if reply.Error != "" {
		return ExperienceOrder{}, &model.BackendError{Op: "experience order", Message: reply.Error}
	}
	return reply.ExperienceOrder, nil
}

// ApplyExperienceOrder reorders the experience blocks and recompiles. The
// backend reverts the change when compilation fails.
func (c *Client) ApplyExperienceOrder(ctx context.Context, order ExperienceOrder) error {
	if len(order.Order) == 0 {
		return &model.BackendError{Op: "apply experience order", Message: "no experiences given"}
	}
	if order.Hidden == nil {
		order.Hidden = []string{}
	}
	return c.postAck(ctx, "apply experience order", c.customizer("/apply-manual-ranking"), order)
}

// Skills holds the resume's skill lines by category.
type Skills struct {
	Expertise            []string `json:"expertise"`
	ProgrammingLanguages []string `json:"programming_language"`
	Technologies         []string `json:"technologies"`
}

type skillsReply struct {
	Skills
	Error string `json:"error"`
}

// Skills returns the skills currently listed in the resume.
func (c *Client) Skills(ctx context.Context) (Skills, error) {
	var reply skillsReply
	if err := c.GetJSON(ctx, c.customizer("/get-current-skills"), &reply); err != nil {
		return Skills{}, fmt.Errorf("skills: %w", err)
	}
	if reply.Error != "" {
		return Skills{}, &model.BackendError{Op: "skills", Message: reply.Error}
	}
	return reply.Skills, nil
}

// ApplySkillRanking rewrites the skill lines in the given order and
// recompiles. Skills missing from a category are dropped from the resume.
func (c *Client) ApplySkillRanking(ctx context.Context, skills Skills) error {
	body := map[string]Skills{"skill_ranking": nonNilSkills(skills)}
	return c.postAck(ctx, "apply skill ranking", c.customizer("/apply-manual-skill-ranking"), body)
}

func nonNilSkills(s Skills) Skills {
	for _, l := range []*[]string{&s.Expertise, &s.ProgrammingLanguages, &s.Technologies} {
		if *l == nil {
			*l = []string{}
		}
	}
	return s
}

// SaveHighlights stores the passages of the job posting the user marked as
// relevant for the selected job.
func (c *Client) SaveHighlights(ctx context.Context, highlights []string) error {
	if highlights == nil {
		highlights = []string{}
	}
	return c.postAck(ctx, "save highlights", c.customizer("/save-highlights"), map[string][]string{"highlights": highlights})
}

// DeletePublications removes the Publications section from the resume and
// recompiles it.
func (c *Client) DeletePublications(ctx context.Context) error {
	return c.postAck(ctx, "delete publications", c.customizer("/delete-publications"), nil)
}
