package model

import "testing"

func TestParseMergeStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    MergeStrategy
		wantErr bool
	}{
		{input: "ff", want: StrategyFastForward},
		{input: "fast_forward", want: StrategyFastForward},
		{input: "fast-forward", want: StrategyFastForward},
		{input: "merge", want: StrategyMerge},
		{input: "rebase", want: StrategyRebase},
		{input: "force_push", want: StrategyForcePush},
		{input: "force-push", want: StrategyForcePush},
		{input: "octopus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMergeStrategy(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMergeStrategy(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMergeStrategy(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMergeStrategy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSyncTrigger(t *testing.T) {
	tests := []struct {
		input   string
		want    SyncTrigger
		wantErr bool
	}{
		{input: "manual", want: TriggerManual},
		{input: "always", want: TriggerAlways},
		{input: "schedule:0 3 * * *", want: ScheduleTrigger("0 3 * * *")},
		{input: "hourly", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSyncTrigger(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSyncTrigger(%q) = %q, want error", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSyncTrigger(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSyncTrigger(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSyncTriggerCron(t *testing.T) {
	cron, ok := ScheduleTrigger("*/15 * * * *").Cron()
	if !ok || cron != "*/15 * * * *" {
		t.Errorf("Cron() = %q, %v; want the original expression", cron, ok)
	}
	if _, ok := TriggerManual.Cron(); ok {
		t.Error("manual trigger reported a cron expression")
	}
}

func TestNewSyncLinkDefaults(t *testing.T) {
	source, target := NewRepoID(), NewRepoID()
	link := NewSyncLink(source, target, DirectionPull, StrategyFastForward)

	if link.Trigger != TriggerManual {
		t.Errorf("Trigger = %q, want manual", link.Trigger)
	}
	if !link.Enabled {
		t.Error("new link is disabled")
	}
	if link.SourceRepoID != source || link.TargetRepoID != target {
		t.Error("link endpoints do not match the requested repos")
	}
}

func TestNewSyncRecord(t *testing.T) {
	repoID := NewRepoID()
	rec := NewSyncRecord(repoID)

	if rec.RepoID != repoID {
		t.Errorf("RepoID = %v, want %v", rec.RepoID, repoID)
	}
	if rec.Status != StatusSuccess {
		t.Errorf("initial Status = %q, want success", rec.Status)
	}
	if rec.StartedAt.IsZero() || rec.FinishedAt.IsZero() {
		t.Error("timestamps not initialized")
	}
	if rec.BranchesSynced != 0 || rec.BranchesFailed != 0 || rec.CommitsTransferred != 0 {
		t.Error("counters not zeroed")
	}
}
