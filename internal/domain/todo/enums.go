package todo

import (
	"fmt"
	"strings"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

type Stage string

const (
	StageTodo       Stage = "Todo"
	StageInProgress Stage = "InProgress"
	StageDone       Stage = "Done"
)

var stages = []Stage{StageTodo, StageInProgress, StageDone}

type TagKind string

const (
	TagUserStory TagKind = "UserStory"
	TagBugfix    TagKind = "Bugfix"
	TagTask      TagKind = "Task"
	TagError     TagKind = "Error"
	TagTest      TagKind = "Test"
)

var tagKinds = []TagKind{TagUserStory, TagBugfix, TagTask, TagError, TagTest}

// ParsePriority matches case-insensitively. Blank text yields PriorityLow.
func ParsePriority(raw string) (Priority, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PriorityLow, nil
	}
	for _, p := range priorities {
		if strings.EqualFold(string(p), raw) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q", raw)
}

// ParseStage matches case-insensitively. Blank text yields StageTodo.
func ParseStage(raw string) (Stage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StageTodo, nil
	}
	for _, s := range stages {
		if strings.EqualFold(string(s), raw) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", raw)
}

// ParseTagKind matches case-insensitively. Blank text is rejected.
func ParseTagKind(raw string) (TagKind, error) {
	raw = strings.TrimSpace(raw)
	for _, k := range tagKinds {
		if strings.EqualFold(string(k), raw) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown tag name %q", raw)
}

func (p Priority) String() string { return string(p) }
func (s Stage) String() string    { return string(s) }
func (k TagKind) String() string  { return string(k) }

func Priorities() []Priority { return append([]Priority(nil), priorities...) }
func Stages() []Stage        { return append([]Stage(nil), stages...) }
func TagKinds() []TagKind    { return append([]TagKind(nil), tagKinds...) }
