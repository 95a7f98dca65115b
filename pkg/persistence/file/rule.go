package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
)

// RuleRepository handles rule-related file operations. Rules are stored as
// one JSON document per rule under <root>/rules.
type RuleRepository struct {
	root string

	mu sync.Mutex // serializes read-modify-write cycles like RecordRun
}

// NewRuleRepository creates a new rule repository.
func NewRuleRepository(root string) *RuleRepository {
	return &RuleRepository{root: root}
}

// Save persists a rule to the file system, stamping timestamps.
func (rr *RuleRepository) Save(_ context.Context, rule *models.Rule) error {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	return rr.write(rule)
}

// GetByID retrieves a rule by its ID. Soft-deleted rules are treated as absent.
func (rr *RuleRepository) GetByID(_ context.Context, id string) (*models.Rule, error) {
	rule, err := rr.read(id)
	if err != nil {
		return nil, err
	}

	if rule.DeletedAt != nil {
		return nil, persistence.NewRuleError("get", id, persistence.ErrRuleNotFound)
	}

	return rule, nil
}

// List returns all non-deleted rules matching the filter, ordered by priority
// descending then creation time ascending.
func (rr *RuleRepository) List(ctx context.Context, filter persistence.RuleFilter) ([]*models.Rule, error) {
	rules, err := rr.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.Rule, 0, len(rules))

	for _, rule := range rules {
		if filter.Trigger != nil && rule.Trigger != *filter.Trigger {
			continue
		}

		if filter.Type != nil && rule.Type != *filter.Type {
			continue
		}

		if filter.IsActive != nil && rule.IsActive != *filter.IsActive {
			continue
		}

		matched = append(matched, rule)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}

		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return matched, nil
}

// Due returns active scheduled rules whose next_run_at has passed, ordered by
// priority descending then next_run_at ascending.
func (rr *RuleRepository) Due(ctx context.Context, now time.Time) ([]*models.Rule, error) {
	rules, err := rr.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	due := make([]*models.Rule, 0)

	for _, rule := range rules {
		if rule.Trigger != models.TriggerScheduled || !rule.IsActive {
			continue
		}

		if rule.NextRunAt == nil || rule.NextRunAt.After(now) {
			continue
		}

		due = append(due, rule)
	}

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].Priority != due[j].Priority {
			return due[i].Priority > due[j].Priority
		}

		return due[i].NextRunAt.Before(*due[j].NextRunAt)
	})

	return due, nil
}

// SetActive toggles a rule's active flag.
func (rr *RuleRepository) SetActive(_ context.Context, id string, active bool) error {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rule, err := rr.read(id)
	if err != nil {
		return err
	}

	if rule.DeletedAt != nil {
		return persistence.NewRuleError("set_active", id, persistence.ErrRuleNotFound)
	}

	rule.IsActive = active
	rule.UpdatedAt = time.Now().UTC()

	return rr.write(rule)
}

// Delete soft-deletes a rule. Execution logs referencing it are retained.
func (rr *RuleRepository) Delete(_ context.Context, id string) error {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rule, err := rr.read(id)
	if err != nil {
		return err
	}

	if rule.DeletedAt != nil {
		return nil
	}

	now := time.Now().UTC()
	rule.DeletedAt = &now
	rule.IsActive = false
	rule.UpdatedAt = now

	return rr.write(rule)
}

// RecordRun updates run bookkeeping after one executor invocation.
func (rr *RuleRepository) RecordRun(_ context.Context, id string, ranAt time.Time, nextRunAt *time.Time, status models.RunStatus) error {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rule, err := rr.read(id)
	if err != nil {
		return err
	}

	rule.LastRunAt = &ranAt
	if nextRunAt != nil {
		rule.NextRunAt = nextRunAt
	}

	switch status {
	case models.RunStatusSuccess, models.RunStatusPartial:
		rule.RunCount++
		rule.SuccessCount++
	case models.RunStatusFailure:
		rule.RunCount++
		rule.FailureCount++
	case models.RunStatusSkipped:
		// Skips do not count as runs.
	}

	rule.UpdatedAt = time.Now().UTC()

	return rr.write(rule)
}

func (rr *RuleRepository) loadAll(_ context.Context) ([]*models.Rule, error) {
	root := os.DirFS(path.Join(rr.root, "rules"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list rule files: %w", err)
	}

	rules := make([]*models.Rule, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		rule, err := rr.read(file[:len(file)-5])
		if err != nil {
			if persistence.IsRuleNotFound(err) {
				continue
			}

			return nil, err
		}

		if rule.DeletedAt == nil {
			rules = append(rules, rule)
		}
	}

	return rules, nil
}

func (rr *RuleRepository) read(id string) (*models.Rule, error) {
	filePath := filepath.Clean(path.Join(rr.root, "rules", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewRuleError("read", id, persistence.ErrRuleNotFound)
		}

		return nil, fmt.Errorf("failed to fetch rule %s: %w", id, err)
	}

	var rule models.Rule

	if err := json.Unmarshal(body, &rule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule %s: %w", id, err)
	}

	return &rule, nil
}

func (rr *RuleRepository) write(rule *models.Rule) error {
	dir := path.Join(rr.root, "rules")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create rules directory: %w", err)
	}

	data, err := json.MarshalIndent(rule, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rule %s: %w", rule.ID, err)
	}

	return os.WriteFile(path.Join(dir, rule.ID+".json"), data, 0600)
}
