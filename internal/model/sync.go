package model

import (
	"fmt"
	"strings"
)

// SyncDirection is the direction of sync between two repos.
type SyncDirection string

const (
	DirectionPush SyncDirection = "push"
	DirectionPull SyncDirection = "pull"
	DirectionBoth SyncDirection = "both"
)

// ParseSyncDirection parses the string form of a sync direction.
func ParseSyncDirection(s string) (SyncDirection, error) {
	switch s {
	case "push":
		return DirectionPush, nil
	case "pull":
		return DirectionPull, nil
	case "both":
		return DirectionBoth, nil
	default:
		return "", fmt.Errorf("unknown sync direction: %s", s)
	}
}

// MergeStrategy is how upstream changes are folded into a fork.
type MergeStrategy string

const (
	// StrategyFastForward only moves the branch pointer; diverged
	// branches fail rather than producing a merge commit.
	StrategyFastForward MergeStrategy = "ff"
	// StrategyMerge creates a merge commit when histories diverge.
	StrategyMerge MergeStrategy = "merge"
	// StrategyRebase replays local commits on top of upstream.
	StrategyRebase MergeStrategy = "rebase"
	// StrategyForcePush discards local history and mirrors upstream.
	StrategyForcePush MergeStrategy = "force_push"
)

// ParseMergeStrategy parses a merge strategy name. Underscored and
// hyphenated spellings are both accepted.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch s {
	case "ff", "fast_forward", "fast-forward":
		return StrategyFastForward, nil
	case "merge":
		return StrategyMerge, nil
	case "rebase":
		return StrategyRebase, nil
	case "force_push", "force-push":
		return StrategyForcePush, nil
	default:
		return "", fmt.Errorf("unknown merge strategy: %s", s)
	}
}

// SyncTrigger says when a sync link should fire. It is carried in its
// stored string form: "manual", "always", or "schedule:<cron>".
type SyncTrigger string

const (
	TriggerManual SyncTrigger = "manual"
	TriggerAlways SyncTrigger = "always"
)

// ScheduleTrigger builds a cron-scheduled trigger.
func ScheduleTrigger(cron string) SyncTrigger {
	return SyncTrigger("schedule:" + cron)
}

// Cron returns the cron expression of a schedule trigger, and whether
// the trigger is one.
func (t SyncTrigger) Cron() (string, bool) {
	return strings.CutPrefix(string(t), "schedule:")
}

// ParseSyncTrigger parses the stored string form of a sync trigger.
func ParseSyncTrigger(s string) (SyncTrigger, error) {
	if strings.HasPrefix(s, "schedule:") {
		return SyncTrigger(s), nil
	}
	switch s {
	case "manual":
		return TriggerManual, nil
	case "always":
		return TriggerAlways, nil
	default:
		return "", fmt.Errorf("unknown sync trigger: %s", s)
	}
}

// SyncInstructions carries optional per-link tuning.
type SyncInstructions struct {
	BranchInclude []string `json:"branch_include,omitempty"`
	BranchExclude []string `json:"branch_exclude,omitempty"`
	SyncTags      bool     `json:"sync_tags,omitempty"`
}

// SyncLink is a directed sync edge between two tracked repos.
type SyncLink struct {
	ID            SyncLinkID       `json:"id"`
	SourceRepoID  RepoID           `json:"source_repo_id"`
	TargetRepoID  RepoID           `json:"target_repo_id"`
	Direction     SyncDirection    `json:"direction"`
	MergeStrategy MergeStrategy    `json:"merge_strategy"`
	Trigger       SyncTrigger      `json:"trigger"`
	Instructions  SyncInstructions `json:"instructions"`
	Enabled       bool             `json:"enabled"`
}

// NewSyncLink builds an enabled, manually triggered link between two repos.
func NewSyncLink(source, target RepoID, direction SyncDirection, strategy MergeStrategy) *SyncLink {
	return &SyncLink{
		ID:            NewSyncLinkID(),
		SourceRepoID:  source,
		TargetRepoID:  target,
		Direction:     direction,
		MergeStrategy: strategy,
		Trigger:       TriggerManual,
		Enabled:       true,
	}
}
