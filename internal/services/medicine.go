package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"arogya-app-server/internal/genai"
	"arogya-app-server/internal/models"
	"arogya-app-server/internal/utils"
)

// MockMedicines are the packages the simulated camera can recognize
var MockMedicines = []string{"Paracetamol", "Amoxicillin", "Ibuprofen", "Vitamin D"}

// FallbackScanResult is returned when a medicine cannot be identified
func FallbackScanResult(name string) models.ARScanResult {
	return models.ARScanResult{Name: name, Usage: "Consult doctor", SideEffects: "Unknown", Confidence: 0}
}

// MedicineIdentifier explains a medicine by name
type MedicineIdentifier struct {
	ai Collaboration
}

// NewMedicineIdentifier creates a new MedicineIdentifier
func NewMedicineIdentifier(ai Collaboration) *MedicineIdentifier {
	return &MedicineIdentifier{ai: ai}
}

// Identify returns usage and side effects for name
func (m *MedicineIdentifier) Identify(ctx context.Context, name string) models.ARScanResult {
	name = strings.TrimSpace(name)
	prompt := fmt.Sprintf(`Identify medicine %q. Return JSON: { "name": %q, "usage": "Short usage", "sideEffects": "Common side effects", "confidence": 0.95 }`, name, name)

	result, _ := structured(ctx, m.ai, genai.Request{Task: TaskIdentify, Prompt: prompt},
		func(r *models.ARScanResult) error { return utils.Validate(r) },
		func() models.ARScanResult { return FallbackScanResult(name) },
	)
	return result
}

// Scanner simulates pointing the camera at a medicine package
type Scanner struct {
	identifier *MedicineIdentifier
	delay      time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewScanner creates a scanner that recognizes a package after delay
func NewScanner(identifier *MedicineIdentifier, delay time.Duration, rng *rand.Rand) *Scanner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scanner{identifier: identifier, delay: delay, rng: rng}
}

// Scan waits for recognition, then identifies the medicine found. It returns
// ctx.Err() when the scan is abandoned.
func (s *Scanner) Scan(ctx context.Context) (models.ARScanResult, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return models.ARScanResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	found := MockMedicines[s.rng.Intn(len(MockMedicines))]
	s.mu.Unlock()

	return s.identifier.Identify(ctx, found), nil
}
