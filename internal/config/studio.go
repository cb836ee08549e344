package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Leganyst/studio-calendar/internal/utils"
)

// StudioProfile — настройки студии из YAML: рабочие часы по умолчанию,
// выходные и праздники для генерации слотов, имя календаря для экспорта.
//
//	name: Northlight Films
//	location: 12 Harbour St
//	working_hours:
//	  start: "09:00"
//	  end: "17:00"
//	slot_duration_minutes: 120
//	exclude_weekends: true
//	max_generation_days: 366
//	holidays: ["2026-12-25"]
type StudioProfile struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`

	WorkingHours struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"working_hours"`

	SlotDurationMinutes int      `yaml:"slot_duration_minutes"`
	ExcludeWeekends     *bool    `yaml:"exclude_weekends"`
	MaxGenerationDays   int      `yaml:"max_generation_days"`
	Holidays            []string `yaml:"holidays"`
}

// DefaultStudioProfile — значения, которые применяются без файла профиля.
func DefaultStudioProfile() *StudioProfile {
	excludeWeekends := true
	p := &StudioProfile{
		Name:                "Studio Calendar",
		SlotDurationMinutes: 120,
		ExcludeWeekends:     &excludeWeekends,
		MaxGenerationDays:   366,
	}
	p.WorkingHours.Start = "09:00"
	p.WorkingHours.End = "17:00"
	return p
}

// LoadStudioProfile читает профиль; пустой path — профиль по умолчанию.
// Незаданные в файле поля берутся из DefaultStudioProfile.
func LoadStudioProfile(path string) (*StudioProfile, error) {
	p := DefaultStudioProfile()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read studio profile: %w", err)
	}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parse studio profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *StudioProfile) Validate() error {
	start, err := utils.ParseClock(p.WorkingHours.Start)
	if err != nil {
		return fmt.Errorf("invalid studio profile: working_hours.start: %w", err)
	}
	end, err := utils.ParseClock(p.WorkingHours.End)
	if err != nil {
		return fmt.Errorf("invalid studio profile: working_hours.end: %w", err)
	}
	if end <= start {
		return fmt.Errorf("invalid studio profile: working hours end must be after start")
	}
	if p.SlotDurationMinutes <= 0 {
		return fmt.Errorf("invalid studio profile: slot_duration_minutes must be positive")
	}
	if p.MaxGenerationDays <= 0 {
		return fmt.Errorf("invalid studio profile: max_generation_days must be positive")
	}
	for _, h := range p.Holidays {
		if _, err := utils.ParseDate(h); err != nil {
			return fmt.Errorf("invalid studio profile: holidays: %w", err)
		}
	}
	return nil
}

func (p *StudioProfile) SkipWeekends() bool {
	return p.ExcludeWeekends == nil || *p.ExcludeWeekends
}
