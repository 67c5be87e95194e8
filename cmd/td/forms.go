package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/talentdesk/talentdesk/internal/schema"
)

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := parseFee(s); err != nil {
		return err
	}
	return nil
}

func parseFee(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	fee, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("fee %q is not a number", s)
	}
	if fee < 0 {
		return 0, errors.New("fee must not be negative")
	}
	return fee, nil
}

func formatFee(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func statusOptions() []huh.Option[schema.Status] {
	opts := make([]huh.Option[schema.Status], 0, len(schema.Statuses))
	for _, s := range schema.Statuses {
		opts = append(opts, huh.NewOption(string(s), s))
	}
	return opts
}

func categoryOptions() []huh.Option[schema.Category] {
	opts := []huh.Option[schema.Category]{huh.NewOption("(none)", schema.Category(""))}
	for _, c := range schema.Categories {
		opts = append(opts, huh.NewOption(string(c), c))
	}
	return opts
}

// influencerForm edits inf in place.
func influencerForm(inf *schema.Influencer) error {
	fee := formatFee(inf.Fee)
	if inf.Status == "" {
		inf.Status = schema.StatusPending
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&inf.Name).Validate(required("name")),
			huh.NewInput().Title("Brand").Value(&inf.Brand).Validate(required("brand")),
			huh.NewInput().Title("Fee (₺)").Value(&fee).Validate(validAmount),
			huh.NewSelect[schema.Status]().Title("Status").Options(statusOptions()...).Value(&inf.Status),
			huh.NewSelect[schema.Category]().Title("Category").Options(categoryOptions()...).Value(&inf.Category),
		),
		huh.NewGroup(
			huh.NewInput().Title("Phone").Value(&inf.Phone),
			huh.NewInput().Title("Email").Value(&inf.Email),
			huh.NewInput().Title("Instagram").Value(&inf.Instagram),
			huh.NewInput().Title("TikTok").Value(&inf.TikTok),
			huh.NewInput().Title("Image URL").Value(&inf.Image),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	parsed, err := parseFee(fee)
	if err != nil {
		return err
	}
	inf.Fee = parsed
	return nil
}

// collaborationForm edits c in place. influencers supplies the choices for
// the influencer field.
func collaborationForm(c *schema.Collaboration, team schema.Team, influencers []schema.Influencer) error {
	fee := formatFee(c.Fee)
	count := strconv.Itoa(max(c.CollaborationCount, 1))
	date := c.Date
	if date == "" {
		date = time.Now().Format(schema.DateLayout)
	}
	if c.Status == "" {
		c.Status = schema.StatusPending
	}
	if c.AssignedTo == "" && len(team) > 0 {
		c.AssignedTo = team[0]
	}

	infOpts := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, inf := range influencers {
		infOpts = append(infOpts, huh.NewOption(inf.Name+" ("+inf.Brand+")", inf.ID))
	}
	memberOpts := huh.NewOptions([]string(team)...)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Brand").Value(&c.Brand).Validate(required("brand")),
			huh.NewSelect[string]().Title("Influencer").Options(infOpts...).Value(&c.InfluencerID),
			huh.NewInput().Title("Date").Description("YYYY-MM-DD, DD.MM.YYYY or e.g. \"next friday\"").
				Value(&date).Validate(func(s string) error {
				_, err := schema.ParseDate(s, time.Now())
				return err
			}),
			huh.NewInput().Title("Fee (₺)").Value(&fee).Validate(validAmount),
			huh.NewInput().Title("Collaboration count").Value(&count).Validate(func(s string) error {
				if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 1 {
					return errors.New("count must be a positive whole number")
				}
				return nil
			}),
			huh.NewSelect[string]().Title("Assigned to").Options(memberOpts...).Value(&c.AssignedTo),
			huh.NewSelect[schema.Status]().Title("Status").Options(statusOptions()...).Value(&c.Status),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	var err error
	if c.Fee, err = parseFee(fee); err != nil {
		return err
	}
	if c.Date, err = schema.ParseDate(date, time.Now()); err != nil {
		return err
	}
	c.CollaborationCount, _ = strconv.Atoi(strings.TrimSpace(count))
	return nil
}

// confirm asks a yes/no question. Without a terminal the answer must be
// given up front with --yes.
func confirm(a *app, title string) (bool, error) {
	if a.yes {
		return true, nil
	}
	if !a.interactive {
		return false, errors.New("confirmation required: rerun with --yes")
	}
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}
