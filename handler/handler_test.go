package handler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/model"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/session"
	"github.com/gin-gonic/gin"
)

var testSecret = []byte("test-secret-key")

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSource struct {
	contracts []*model.Contract
	err       error
	calls     atomic.Int32
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(ctx context.Context) ([]*model.Contract, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.contracts, nil
}

var errUnavailable = errors.New("failed to fetch contracts: status 500")

func testContracts(n int) []*model.Contract {
	statuses := []string{model.StatusActive, model.StatusPending, model.StatusExpired, model.StatusExpiringSoon}
	out := make([]*model.Contract, n)
	for i := range out {
		out[i] = &model.Contract{
			ID:         fmt.Sprintf("ct-%03d", i+1),
			Name:       fmt.Sprintf("Agreement %d", i+1),
			Parties:    []string{"Acme Corp", fmt.Sprintf("Vendor %d", i+1)},
			StartDate:  model.NewDate(2024, time.January, 1),
			ExpiryDate: model.NewDate(2025, time.January, 1),
			Status:     statuses[i%len(statuses)],
			RiskScore:  float64(i%5) + 0.5,
			Value:      1000,
			Type:       "Service Agreement",
		}
	}
	return out
}

func newTestRegistry() *session.Registry {
	return session.NewRegistry(session.NewMemoryKV(), session.Options{
		Password:    "test123",
		EmailDomain: "contractsdash.com",
		Secret:      testSecret,
		TokenTTL:    time.Hour,
	}, 0)
}
