// Package bootstrap implements multi-path bootstrap for a new node
// joining the overlay: a fresh secret is sent to each of k targets over
// its own path and expanded into a per-target PSK, and ShamirEncoder
// provides Shamir sharing of secrets against active relay adversaries.
// Secrets from different paths are not XOR-combined here. This is the
// only phase where network topology matters — every later operation runs over already-established
// ITS channels.
package bootstrap

import (
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"

	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/shamir"
)

const (
	// DefaultK is the default number of bootstrap paths.
	DefaultK = 20
	// DefaultThreshold is the default Shamir reconstruction threshold.
	DefaultThreshold = 14
	// secretSizeBytes is the size of a raw per-path bootstrap secret.
	secretSizeBytes = 32
	// defaultPSKLength is the default derived PSK length in bytes.
	defaultPSKLength = 256
)

// ShamirEncoder encodes bootstrap secrets with Shamir sharing so that no
// single relay on the k paths ever sees the full secret.
type ShamirEncoder struct {
	K         int
	Threshold int
}

// NewShamirEncoder creates an encoder splitting secrets into k shares
// with the given reconstruction threshold.
func NewShamirEncoder(k, threshold int) *ShamirEncoder {
	return &ShamirEncoder{K: k, Threshold: threshold}
}

// Encode splits secret into e.K Shamir shares.
func (e *ShamirEncoder) Encode(secret field.Element, src field.Source) ([]shamir.Share, error) {
	return shamir.Split(secret, e.K, e.Threshold, src)
}

// Decode reconstructs the secret from at least e.Threshold shares.
func (e *ShamirEncoder) Decode(shares []shamir.Share) (field.Element, error) {
	return shamir.Reconstruct(shares)
}

// DetectCorrupt flags shares inconsistent with a degree-(threshold-1)
// polynomial.
func (e *ShamirEncoder) DetectCorrupt(shares []shamir.Share) []int {
	return shamir.ConsistencyCheck(shares, e.Threshold-1)
}

// BootstrapSession runs a single bootstrap session: establishing PSKs
// with k target nodes by generating a random per-path secret, relaying it
// via diverse paths, and expanding whatever arrives into a PSK.
type BootstrapSession struct {
	K           int
	Threshold   int
	RawSecrets  [][]byte
	DerivedPSKs map[int][]byte
}

// NewBootstrapSession creates a session for k targets with the given
// Shamir reconstruction threshold.
func NewBootstrapSession(k, threshold int) *BootstrapSession {
	return &BootstrapSession{
		K:           k,
		Threshold:   threshold,
		DerivedPSKs: make(map[int][]byte),
	}
}

// GenerateSecrets draws k fresh 256-bit random secrets, one per path.
func (s *BootstrapSession) GenerateSecrets(randSource io.Reader) ([][]byte, error) {
	s.RawSecrets = make([][]byte, s.K)
	for i := 0; i < s.K; i++ {
		buf := make([]byte, secretSizeBytes)
		if _, err := io.ReadFull(randSource, buf); err != nil {
			return nil, fmt.Errorf("bootstrap: generating secret %d: %w", i, err)
		}
		s.RawSecrets[i] = buf
	}
	return s.RawSecrets, nil
}

// DerivePSK expands a shared secret to targetLength bytes using SHAKE-256
// as a deterministic, information-theoretically-sound extractor.
func DerivePSK(sharedSecret []byte, targetLength int) []byte {
	out := make([]byte, targetLength)
	sha3.ShakeSum256(out, sharedSecret)
	return out
}

// Complete derives PSKs for every target whose raw secret successfully
// arrived. received maps target ID to the raw secret bytes that target
// ended up with after traversing its path.
func (s *BootstrapSession) Complete(targetIDs []int, received map[int][]byte) map[int][]byte {
	s.DerivedPSKs = make(map[int][]byte, len(targetIDs))
	for _, tid := range targetIDs {
		if secret, ok := received[tid]; ok {
			s.DerivedPSKs[tid] = DerivePSK(secret, defaultPSKLength)
		}
	}
	return s.DerivedPSKs
}

// MultiPathBootstrap coordinates k-path secret establishment against a
// given topology, with hooks for a simulated adversary to observe or
// tamper with in-flight secrets.
type MultiPathBootstrap struct {
	K         int
	Threshold int
}

// NewMultiPathBootstrap creates a coordinator for k paths with the given
// Shamir threshold.
func NewMultiPathBootstrap(k, threshold int) *MultiPathBootstrap {
	return &MultiPathBootstrap{K: k, Threshold: threshold}
}

// Result reports the outcome of a MultiPathBootstrap.Bootstrap run.
type Result struct {
	PSKs       map[int][]byte
	NTargets   int
	Observed   int
	Corrupted  int
	Clean      int
	Success    bool
}

// Bootstrap runs the bootstrap protocol against targetIDs (at most the
// first m.K of them are used). observeFn, if non-nil, reports whether Eve
// observes a given path's secret; corruptFn, if non-nil, returns a
// tampered secret to substitute (or nil to leave it unmodified).
func (m *MultiPathBootstrap) Bootstrap(
	targetIDs []int,
	randSource io.Reader,
	observeFn func(targetID int, secret []byte) bool,
	corruptFn func(targetID int, secret []byte) []byte,
) (Result, error) {
	session := NewBootstrapSession(m.K, m.Threshold)
	secrets, err := session.GenerateSecrets(randSource)
	if err != nil {
		return Result{}, err
	}

	targets := targetIDs
	if len(targets) > m.K {
		targets = targets[:m.K]
	}

	observed, corrupted := 0, 0
	received := make(map[int][]byte, len(targets))

	for i, tid := range targets {
		secret := secrets[i]

		if observeFn != nil && observeFn(tid, secret) {
			observed++
		}

		if corruptFn != nil {
			if modified := corruptFn(tid, secret); modified != nil && !bytesEqual(modified, secret) {
				corrupted++
				secret = modified
			}
		}

		received[tid] = secret
	}

	psks := session.Complete(targets, received)

	return Result{
		PSKs:      psks,
		NTargets:  len(targets),
		Observed:  observed,
		Corrupted: corrupted,
		Clean:     len(targets) - observed,
		Success:   len(targets)-observed >= 1,
	}, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TemporalBootstrap accumulates PSKs across multiple bootstrap sessions
// run from different network contexts over time — each session adds ITS
// channels rather than replacing earlier ones.
type TemporalBootstrap struct {
	KPerSession int
	NSessions   int

	Sessions []Result
	AllPSKs  map[int][]byte
}

// NewTemporalBootstrap creates a manager accumulating PSKs across
// nSessions sessions of kPerSession targets each.
func NewTemporalBootstrap(kPerSession, nSessions int) *TemporalBootstrap {
	return &TemporalBootstrap{
		KPerSession: kPerSession,
		NSessions:   nSessions,
		AllPSKs:     make(map[int][]byte),
	}
}

// RunSession runs one temporal bootstrap session against targetIDs and
// merges its PSKs into the accumulated set.
func (t *TemporalBootstrap) RunSession(targetIDs []int, randSource io.Reader) (Result, error) {
	mpb := NewMultiPathBootstrap(t.KPerSession, t.KPerSession)
	result, err := mpb.Bootstrap(targetIDs, randSource, nil, nil)
	if err != nil {
		return Result{}, err
	}
	t.Sessions = append(t.Sessions, result)
	for tid, psk := range result.PSKs {
		t.AllPSKs[tid] = psk
	}
	return result, nil
}

// TotalChannels reports how many distinct ITS channels have been
// established across all sessions so far.
func (t *TemporalBootstrap) TotalChannels() int {
	return len(t.AllPSKs)
}
