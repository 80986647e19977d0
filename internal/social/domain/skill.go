package domain

import (
	"errors"
	"strings"
)

type Skill string

const (
	SkillFrontend  Skill = "frontend"
	SkillBackend   Skill = "backend"
	SkillFullstack Skill = "fullstack"
	SkillMobile    Skill = "mobile"
	SkillDevops    Skill = "devops"
	SkillData      Skill = "data"
	SkillAI        Skill = "ai"
	SkillDesign    Skill = "design"
	SkillPM        Skill = "pm"
	SkillQA        Skill = "qa"
)

var ErrUnknownSkill = errors.New("domain: unknown skill")

var knownSkills = map[Skill]struct{}{
	SkillFrontend:  {},
	SkillBackend:   {},
	SkillFullstack: {},
	SkillMobile:    {},
	SkillDevops:    {},
	SkillData:      {},
	SkillAI:        {},
	SkillDesign:    {},
	SkillPM:        {},
	SkillQA:        {},
}

// ParseSkills normalises raw skill names into a de-duplicated set, keeping
// first-seen order. Blank entries are skipped.
func ParseSkills(raw []string) ([]Skill, error) {
	out := make([]Skill, 0, len(raw))
	seen := make(map[Skill]struct{}, len(raw))
	for _, r := range raw {
		s := Skill(strings.ToLower(strings.TrimSpace(r)))
		if s == "" {
			continue
		}
		if _, ok := knownSkills[s]; !ok {
			return nil, ErrUnknownSkill
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
