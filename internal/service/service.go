// Package service runs the classification pipeline: decode, preprocess,
// predict, map. The batch path fans preprocessing out across workers and
// isolates per-image failures so one bad payload never sinks its siblings.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/engagelens/engage-api/internal/engagement"
	"github.com/engagelens/engage-api/internal/imaging"
)

var (
	// ErrEmptyBatch rejects batch requests with no images. An empty batch is
	// treated as a caller mistake rather than answered with zero results.
	ErrEmptyBatch = errors.New("batch is empty")

	// ErrBatchTooLarge rejects batches over the configured cap before any
	// decoding work is done.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)

// Predictor runs the engagement model over a preprocessed batch and returns
// one probability vector per image, in batch order. It must be safe for
// concurrent use.
type Predictor interface {
	Predict(batch *imaging.Tensor) ([][]float32, error)
}

type Service struct {
	pred     Predictor
	log      *slog.Logger
	batchMax int
	workers  int
}

func New(pred Predictor, log *slog.Logger, batchMax, workers int) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{pred: pred, log: log, batchMax: batchMax, workers: workers}
}

// BatchItem is the outcome for one image of a batch. Exactly one of Result
// and Err is set; Index is the image's position in the request.
type BatchItem struct {
	Index  int
	Result *engagement.Result
	Err    error
}

// BatchResult covers every input image: Items[i] always corresponds to
// payload i, whether it classified or failed.
type BatchResult struct {
	Items      []BatchItem
	Total      int
	Successful int
}

// ClassifyImage runs the full pipeline for a single payload.
func (s *Service) ClassifyImage(ctx context.Context, payload string) (*engagement.Result, error) {
	tensor, err := s.prepare(payload)
	if err != nil {
		return nil, err
	}

	probs, err := s.pred.Predict(tensor)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}
	return engagement.Classify(probs[0])
}

// ClassifyBatch runs the pipeline over every payload with per-item failure
// isolation. Decoding and preprocessing fan out across workers; the images
// that survive are stacked into a single model invocation, then mapped back
// to their original indexes.
func (s *Service) ClassifyBatch(ctx context.Context, payloads []string) (*BatchResult, error) {
	if len(payloads) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(payloads) > s.batchMax {
		return nil, fmt.Errorf("%w: got %d images, limit is %d", ErrBatchTooLarge, len(payloads), s.batchMax)
	}

	items := make([]BatchItem, len(payloads))
	tensors := make([]*imaging.Tensor, len(payloads))

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i, payload := range payloads {
		eg.Go(func() error {
			// Each goroutine owns slot i; failures stay in the slot and
			// never abort the group.
			tensor, err := s.prepare(payload)
			if err != nil {
				s.log.Debug("batch item failed preprocessing", "index", i, "error", err)
				items[i] = BatchItem{Index: i, Err: err}
				return nil
			}
			tensors[i] = tensor
			return nil
		})
	}
	eg.Wait()

	var live []*imaging.Tensor
	var liveIdx []int
	for i, tensor := range tensors {
		if tensor != nil {
			live = append(live, tensor)
			liveIdx = append(liveIdx, i)
		}
	}

	if len(live) > 0 {
		probs, err := s.pred.Predict(imaging.Stack(live))
		if err != nil {
			return nil, fmt.Errorf("batch prediction failed: %w", err)
		}
		for k, i := range liveIdx {
			result, err := engagement.Classify(probs[k])
			if err != nil {
				items[i] = BatchItem{Index: i, Err: err}
				continue
			}
			items[i] = BatchItem{Index: i, Result: result}
		}
	}

	successful := 0
	for i := range items {
		if items[i].Err == nil {
			successful++
		}
	}
	return &BatchResult{Items: items, Total: len(payloads), Successful: successful}, nil
}

func (s *Service) prepare(payload string) (*imaging.Tensor, error) {
	img, err := imaging.Decode(payload)
	if err != nil {
		return nil, err
	}
	return imaging.Prepare(img)
}
