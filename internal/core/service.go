package core

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trustlens/trustlens/internal/utils"
)

// AnalyzerService drives end-to-end analysis passes for addresses and
// keeps the freshness cache current.
//
// The cache has no per-entry locking: two overlapping passes for the
// same host each independently read, decide and write. Writes carry a
// per-identity pass sequence, and the store step refuses to replace a
// record left by a newer pass, so a slow stale pass cannot clobber a
// fresher result. The remaining interleavings are accepted.
type AnalyzerService struct {
	facts        DomainFactsProvider
	classifier   TextClassifier
	cache        CacheRepository
	publisher    Publisher
	trusted      TrustChecker
	text         *utils.TextProcessor
	logger       *zap.Logger
	cacheEnabled bool
	freshness    time.Duration
	maxFragments int
	previewSize  int

	mu   sync.Mutex
	seqs map[string]uint64
}

// NewAnalyzerService creates a new analyzer service.
func NewAnalyzerService(
	facts DomainFactsProvider,
	classifier TextClassifier,
	cache CacheRepository,
	publisher Publisher,
	trusted TrustChecker,
	text *utils.TextProcessor,
	logger *zap.Logger,
	cacheEnabled bool,
	freshness time.Duration,
	maxFragments int,
	previewSize int,
) *AnalyzerService {
	if freshness <= 0 {
		freshness = DefaultFreshnessWindow
	}
	return &AnalyzerService{
		facts:        facts,
		classifier:   classifier,
		cache:        cache,
		publisher:    publisher,
		trusted:      trusted,
		text:         text,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		freshness:    freshness,
		maxFragments: maxFragments,
		previewSize:  previewSize,
		seqs:         make(map[string]uint64),
	}
}

// Analyze returns the current composite result for an address. A usable
// cached record is returned directly with no outbound requests;
// otherwise a full analysis pass runs and its result, success or
// failure, is stored for the next reader. Analyze never returns an
// error: every failure mode is represented as a value on the composite.
func (s *AnalyzerService) Analyze(ctx context.Context, rawURL string, fragments []string) *CompositeResult {
	identity, err := HostIdentity(rawURL)
	if err != nil {
		s.logger.Warn("Could not derive host identity", zap.String("url", rawURL))
		return &CompositeResult{Error: "invalid address", ComputedAt: time.Now()}
	}

	if s.trusted != nil && s.trusted.IsTrusted(identity) {
		s.logger.Info("Skipping analysis for trusted host",
			zap.String("host", identity),
			zap.String("action", "trustlist_bypass"))
		res := &CompositeResult{Trusted: true, ComputedAt: time.Now(), PassID: uuid.NewString()}
		s.publish(identity, res)
		return res
	}

	if s.cacheEnabled {
		if cached, err := s.cache.Get(ctx, identity); err == nil && cached.Usable(time.Now(), s.freshness) {
			s.logger.Debug("Cache hit for host", zap.String("host", identity))
			s.publish(identity, cached)
			return cached
		}
	}

	return s.runPass(ctx, identity, rawURL, fragments)
}

// runPass performs one full analysis pass: domain facts and the
// address-text verdict are fetched concurrently, then each content
// fragment is classified concurrently. A facts failure ends the pass
// early; an individual classifier failure does not.
func (s *AnalyzerService) runPass(ctx context.Context, identity, rawURL string, fragments []string) *CompositeResult {
	seq := s.nextSeq(identity)
	passID := uuid.NewString()
	s.logger.Info("Starting analysis pass",
		zap.String("host", identity),
		zap.String("pass_id", passID),
		zap.Int("fragments", len(fragments)))

	var (
		facts      *DomainFacts
		factsErr   error
		urlVerdict *TextVerdict
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		facts, factsErr = s.facts.FetchDomainFacts(ctx, rawURL)
		return nil
	})
	g.Go(func() error {
		v, err := s.classifier.ClassifyText(ctx, rawURL)
		if err != nil {
			s.logger.Warn("Address text classification failed",
				zap.String("host", identity), zap.Error(err))
			v = nil
		}
		urlVerdict = v
		return nil
	})
	_ = g.Wait()

	if factsErr != nil {
		s.logger.Error("Domain facts request failed",
			zap.String("host", identity), zap.Error(factsErr))
		return s.store(ctx, identity, &CompositeResult{
			Error:      "analysis request failed: " + factsErr.Error(),
			ComputedAt: time.Now(),
			PassSeq:    seq,
			PassID:     passID,
		})
	}
	if facts == nil || facts.Error != "" {
		msg := "empty analysis response"
		if facts != nil {
			msg = facts.Error
		}
		s.logger.Warn("Analysis service reported an error",
			zap.String("host", identity), zap.String("error", msg))
		return s.store(ctx, identity, &CompositeResult{
			Error:      msg,
			ComputedAt: time.Now(),
			PassSeq:    seq,
			PassID:     passID,
		})
	}

	if s.maxFragments > 0 && len(fragments) > s.maxFragments {
		fragments = fragments[:s.maxFragments]
	}

	verdicts := make([]FragmentVerdict, 0, len(fragments))
	var vmu sync.Mutex
	fg := new(errgroup.Group)
	for i, fragment := range fragments {
		i, fragment := i, fragment
		fg.Go(func() error {
			v, err := s.classifier.ClassifyText(ctx, fragment)
			if err != nil || v == nil {
				// A failed fragment is dropped, not null-filled; the
				// batch continues.
				s.logger.Warn("Fragment classification failed",
					zap.String("host", identity),
					zap.Int("fragment", i),
					zap.Error(err))
				return nil
			}
			fv := FragmentVerdict{
				TextVerdict:   *v,
				FragmentIndex: i,
				Preview:       s.preview(fragment),
			}
			vmu.Lock()
			verdicts = append(verdicts, fv)
			vmu.Unlock()
			return nil
		})
	}
	_ = fg.Wait()

	// Completion order is irrelevant; results follow input order.
	sort.Slice(verdicts, func(i, j int) bool {
		return verdicts[i].FragmentIndex < verdicts[j].FragmentIndex
	})

	res := &CompositeResult{
		Facts:             facts,
		URLVerdict:        urlVerdict,
		URLChecked:        true,
		FragmentVerdicts:  verdicts,
		FragmentsAnalyzed: true,
		ComputedAt:        time.Now(),
		PassSeq:           seq,
		PassID:            passID,
	}
	return s.store(ctx, identity, res)
}

// store writes the pass result unless a newer pass for the same identity
// already wrote one, then announces it to any listeners.
func (s *AnalyzerService) store(ctx context.Context, identity string, res *CompositeResult) *CompositeResult {
	if s.cacheEnabled {
		existing, err := s.cache.Get(ctx, identity)
		if err == nil && existing != nil && existing.PassSeq > res.PassSeq {
			s.logger.Debug("Skipping stale cache write",
				zap.String("host", identity),
				zap.Uint64("pass_seq", res.PassSeq),
				zap.Uint64("newer_seq", existing.PassSeq))
		} else if err := s.cache.Set(ctx, identity, res); err != nil {
			s.logger.Error("Failed to update cache",
				zap.String("host", identity), zap.Error(err))
		}
	}
	s.publish(identity, res)
	return res
}

func (s *AnalyzerService) publish(identity string, res *CompositeResult) {
	if s.publisher != nil {
		s.publisher.Publish(identity, res)
	}
}

func (s *AnalyzerService) preview(fragment string) string {
	if s.text == nil {
		return fragment
	}
	return s.text.Preview(fragment, s.previewSize)
}

// nextSeq returns the next pass sequence number for an identity.
// Sequences only ever increase, so a record's PassSeq totally orders the
// passes that produced it.
func (s *AnalyzerService) nextSeq(identity string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[identity]++
	return s.seqs[identity]
}

// FreshnessWindow exposes the configured validity window.
func (s *AnalyzerService) FreshnessWindow() time.Duration {
	return s.freshness
}
