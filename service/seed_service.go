package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	model "github.com/nfredmond/project-manager/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedDate is a fixture date: either an absolute YYYY-MM-DD or an offset
// from today such as "+7d" or "-3d".
type SeedDate struct {
	Absolute string
	Offset   *int
}

func (d *SeedDate) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "d") && (strings.HasPrefix(raw, "+") || strings.HasPrefix(raw, "-")) {
		n, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil {
			return fmt.Errorf("line %d: invalid day offset %q", node.Line, raw)
		}
		d.Offset = &n
		return nil
	}
	if _, err := time.Parse(time.DateOnly, raw); err != nil {
		return fmt.Errorf("line %d: invalid date %q", node.Line, raw)
	}
	d.Absolute = raw
	return nil
}

// Resolve returns the date as YYYY-MM-DD relative to today, or nil.
func (d *SeedDate) Resolve(today time.Time) *string {
	if d == nil {
		return nil
	}
	if d.Offset != nil {
		v := today.AddDate(0, 0, *d.Offset).Format(time.DateOnly)
		return &v
	}
	if d.Absolute == "" {
		return nil
	}
	v := d.Absolute
	return &v
}

type SeedFixture struct {
	Tenant struct {
		Name     string `yaml:"name"`
		Slug     string `yaml:"slug"`
		Timezone string `yaml:"timezone"`
	} `yaml:"tenant"`
	Members []struct {
		UserID string           `yaml:"user_id"`
		Role   model.TenantRole `yaml:"role"`
	} `yaml:"members"`
	Projects []struct {
		Key    string              `yaml:"key"`
		Name   string              `yaml:"name"`
		Code   string              `yaml:"code"`
		Status model.ProjectStatus `yaml:"status"`
		Budget float64             `yaml:"budget"`
		Spent  float64             `yaml:"spent"`
		PED    *SeedDate           `yaml:"ped"`
	} `yaml:"projects"`
	Phases []struct {
		Project string            `yaml:"project"`
		Phase   model.PhaseType   `yaml:"phase"`
		Status  model.PhaseStatus `yaml:"status"`
		Due     *SeedDate         `yaml:"due"`
	} `yaml:"phases"`
	Grants []struct {
		Name    string           `yaml:"name"`
		Stage   model.GrantStage `yaml:"stage"`
		Summary string           `yaml:"summary"`
		Due     *SeedDate        `yaml:"due"`
	} `yaml:"grants"`
	Meetings []struct {
		Title    string            `yaml:"title"`
		Type     model.MeetingType `yaml:"type"`
		Location string            `yaml:"location"`
		Date     *SeedDate         `yaml:"date"`
	} `yaml:"meetings"`
	Records []struct {
		Requester string    `yaml:"requester"`
		Topic     string    `yaml:"topic"`
		Due       *SeedDate `yaml:"due"`
	} `yaml:"records"`
}

// LoadSeedFixture decodes a YAML fixture, rejecting unknown keys.
func LoadSeedFixture(r io.Reader) (*SeedFixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fixture SeedFixture
	if err := dec.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("decode seed fixture: %w", err)
	}
	if fixture.Tenant.Slug == "" || fixture.Tenant.Name == "" {
		return nil, invalid("fixture tenant needs a name and slug")
	}
	return &fixture, nil
}

type SeedResult struct {
	Tenant   *model.Tenant
	Projects int
	Phases   int
	Grants   int
	Meetings int
	Records  int
}

var seededTables = []any{
	&model.CaltransPhase{},
	&model.Grant{},
	&model.Meeting{},
	&model.RecordsRequest{},
	&model.Project{},
	&model.TenantUser{},
}

// Seed loads the fixture into a new tenant. An existing tenant with the same
// slug is an error unless reset is set, in which case its seeded records are
// replaced.
func (s *AgencyService) Seed(ctx context.Context, fixture *SeedFixture, reset bool) (*SeedResult, error) {
	today := timeNow()
	result := &SeedResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant model.Tenant
		err := tx.Where("slug = ?", fixture.Tenant.Slug).First(&tenant).Error
		switch {
		case err == nil && !reset:
			return fmt.Errorf("tenant %s already exists; pass --reset to replace its data", fixture.Tenant.Slug)
		case err == nil:
			for _, table := range seededTables {
				if err := tx.Where("tenant_id = ?", tenant.ID).Delete(table).Error; err != nil {
					return fmt.Errorf("reset tenant data: %w", err)
				}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			tenant = model.Tenant{Name: fixture.Tenant.Name, Slug: fixture.Tenant.Slug}
			if fixture.Tenant.Timezone != "" {
				tz := fixture.Tenant.Timezone
				tenant.Timezone = &tz
			}
			if err := tx.Create(&tenant).Error; err != nil {
				return fmt.Errorf("create tenant: %w", err)
			}
		default:
			return err
		}
		result.Tenant = &tenant
		today = today.In(tenant.Location())

		for _, m := range fixture.Members {
			member := model.TenantUser{TenantID: tenant.ID, UserID: m.UserID, Role: m.Role, Status: "active"}
			if !ValidRole(member.Role) {
				return invalid("member %s has unknown role %q", m.UserID, m.Role)
			}
			if err := tx.Create(&member).Error; err != nil {
				return fmt.Errorf("create member: %w", err)
			}
		}

		projectIDs := make(map[string]string, len(fixture.Projects))
		for _, p := range fixture.Projects {
			project := model.Project{
				TenantID: tenant.ID,
				Name:     p.Name,
				Status:   p.Status,
				Budget:   p.Budget,
				Spent:    p.Spent,
				PED:      p.PED.Resolve(today),
			}
			if project.Status == "" {
				project.Status = model.ProjectActive
			}
			if p.Code != "" {
				code := p.Code
				project.Code = &code
			}
			if err := tx.Create(&project).Error; err != nil {
				return fmt.Errorf("create project %s: %w", p.Name, err)
			}
			projectIDs[p.Key] = project.ID
			result.Projects++
		}

		for _, ph := range fixture.Phases {
			projectID, ok := projectIDs[ph.Project]
			if !ok {
				return invalid("phase references unknown project %q", ph.Project)
			}
			phase := model.CaltransPhase{
				TenantID:   tenant.ID,
				ProjectID:  projectID,
				Phase:      ph.Phase,
				Status:     ph.Status,
				PedDueDate: ph.Due.Resolve(today),
			}
			if phase.Status == "" {
				phase.Status = model.PhasePlanned
			}
			if err := tx.Create(&phase).Error; err != nil {
				return fmt.Errorf("create phase: %w", err)
			}
			result.Phases++
		}

		for _, g := range fixture.Grants {
			grant := model.Grant{
				TenantID: tenant.ID,
				Name:     g.Name,
				Stage:    g.Stage,
				Summary:  trimmedOrNil(&g.Summary),
				Deadline: g.Due.Resolve(today),
			}
			if grant.Stage == "" {
				grant.Stage = model.StageProspecting
			}
			if err := tx.Create(&grant).Error; err != nil {
				return fmt.Errorf("create grant: %w", err)
			}
			result.Grants++
		}

		for _, m := range fixture.Meetings {
			status := defaultMeetingStatus
			meeting := model.Meeting{
				TenantID:    tenant.ID,
				Title:       m.Title,
				MeetingType: m.Type,
				Location:    trimmedOrNil(&m.Location),
				MeetingDate: m.Date.Resolve(today),
				Status:      &status,
			}
			if meeting.MeetingType == "" {
				meeting.MeetingType = model.MeetingInternal
			}
			if err := tx.Create(&meeting).Error; err != nil {
				return fmt.Errorf("create meeting: %w", err)
			}
			result.Meetings++
		}

		for _, r := range fixture.Records {
			request := model.RecordsRequest{
				TenantID:   tenant.ID,
				Requester:  r.Requester,
				Topic:      trimmedOrNil(&r.Topic),
				ReceivedOn: today.Format(time.DateOnly),
				DueOn:      r.Due.Resolve(today),
				Status:     model.RequestOpen,
			}
			if err := tx.Create(&request).Error; err != nil {
				return fmt.Errorf("create records request: %w", err)
			}
			result.Records++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tenant seeded",
		zap.String("tenant", result.Tenant.Slug),
		zap.Int("projects", result.Projects),
		zap.Int("phases", result.Phases),
		zap.Int("grants", result.Grants),
		zap.Int("meetings", result.Meetings),
		zap.Int("records", result.Records),
	)
	return result, nil
}
