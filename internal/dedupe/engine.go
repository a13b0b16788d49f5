package dedupe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/storage"
)

// ErrRunInProgress is returned when another dedupe run holds the exclusive
// run lock. Concurrent runs would create overlapping, inconsistent groups.
var ErrRunInProgress = errors.New("a dedupe run is already in progress")

// Engine orchestrates a full dedupe pass: load, fit, block, score, cluster,
// persist.
type Engine struct {
	Storage storage.Storage
}

// NewEngine creates a new dedupe engine.
func NewEngine(s storage.Storage) *Engine {
	return &Engine{Storage: s}
}

// RunSummary describes what a completed run did.
type RunSummary struct {
	RunID          string `json:"run_id"`
	Records        int    `json:"records"`
	CandidatePairs int    `json:"candidate_pairs"`
	Edges          int    `json:"edges"`
	GroupsCreated  int    `json:"groups_created"`
}

// Run executes one full dedupe pass under the system-wide run lock. Pass a
// threshold <= 0 to use the configured default. Groups are created for every
// connected component of two or more records whose pairwise score clears the
// threshold, skipping components already covered by an earlier run's
// watermark.
func (e *Engine) Run(ctx context.Context, threshold float64) (*RunSummary, error) {
	if threshold <= 0 {
		threshold = config.DefaultThreshold
	}
	runID := uuid.New().String()

	ok, err := e.Storage.AcquireRunLock(runID, config.RunLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	defer func() {
		if err := e.Storage.ReleaseRunLock(); err != nil {
			log.Printf("ERROR: Failed to release dedupe run lock: %v", err)
		}
	}()

	recs, err := e.Storage.GetAllComplaints()
	if err != nil {
		return nil, err
	}
	summary := &RunSummary{RunID: runID, Records: len(recs)}
	if len(recs) == 0 {
		return summary, e.Storage.RecordRun(runID, "system", summaryMap(summary, threshold))
	}

	byID := make(map[uint]*models.ComplaintRecord, len(recs))
	docs := make(map[uint]string, len(recs))
	maxID := uint(0)
	for i := range recs {
		r := &recs[i]
		byID[r.ID] = r
		if r.Text != nil {
			docs[r.ID] = *r.Text
		} else {
			docs[r.ID] = ""
		}
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	// The model is fitted once per run and shared read-only by the workers.
	model := FitTFIDF(docs, config.TFIDFMinDocFreq, config.TFIDFMaxFeatures)

	pairs := CandidatePairs(recs)
	summary.CandidatePairs = len(pairs)

	edges, err := e.scorePairs(ctx, pairs, byID, model, threshold)
	if err != nil {
		return nil, err
	}
	summary.Edges = len(edges)

	watermark, err := e.Storage.Watermark()
	if err != nil {
		return nil, err
	}

	for _, comp := range Components(edges) {
		if len(comp) < 2 {
			continue
		}
		// Components entirely below the watermark were already suggested by
		// an earlier run; re-creating them would pile up overlapping groups.
		if comp[len(comp)-1] <= watermark {
			continue
		}
		group := &models.DuplicateGroup{
			Status:       models.StatusSuggested,
			ScoreSummary: fmt.Sprintf("%d members", len(comp)),
		}
		if err := e.Storage.CreateGroupWithMembers(group, comp, "system"); err != nil {
			return nil, fmt.Errorf("persist group: %w", err)
		}
		summary.GroupsCreated++
	}

	if err := e.Storage.SetWatermark(maxID); err != nil {
		return nil, err
	}
	if err := e.Storage.RecordRun(runID, "system", summaryMap(summary, threshold)); err != nil {
		return nil, err
	}

	log.Printf("Dedupe run %s: %d records, %d pairs, %d edges, %d groups",
		runID, summary.Records, summary.CandidatePairs, summary.Edges, summary.GroupsCreated)
	return summary, nil
}

// scorePairs fans the candidate pairs out over one chunk per CPU. Each worker
// writes into its own slot, so the merged edge list preserves the canonical
// pair order of the input regardless of which worker finishes first.
func (e *Engine) scorePairs(ctx context.Context, pairs []Pair, byID map[uint]*models.ComplaintRecord, model *TFIDFModel, threshold float64) ([]Edge, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	workers := runtime.NumCPU()
	if workers > len(pairs) {
		workers = len(pairs)
	}
	chunkSize := (len(pairs) + workers - 1) / workers
	results := make([][]Edge, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > len(pairs) {
			end = len(pairs)
		}
		if start >= end {
			break
		}
		chunk := pairs[start:end]
		slot := w
		g.Go(func() error {
			var edges []Edge
			for _, p := range chunk {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				score, bd := ScorePair(byID[p.A], byID[p.B], model)
				if score >= threshold {
					edges = append(edges, Edge{Pair: p, Score: score, Breakdown: bd})
				}
			}
			results[slot] = edges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var edges []Edge
	for _, chunk := range results {
		edges = append(edges, chunk...)
	}
	return edges, nil
}

func summaryMap(s *RunSummary, threshold float64) map[string]any {
	return map[string]any{
		"run_id":          s.RunID,
		"records":         s.Records,
		"candidate_pairs": s.CandidatePairs,
		"edges":           s.Edges,
		"groups_created":  s.GroupsCreated,
		"threshold":       threshold,
	}
}
