package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shihaotian/ai-legal-assistant/internal/ai"
	"github.com/shihaotian/ai-legal-assistant/internal/auth"
	"github.com/shihaotian/ai-legal-assistant/internal/model"
	"github.com/shihaotian/ai-legal-assistant/internal/prompt"
	"github.com/shihaotian/ai-legal-assistant/internal/repository"
)

const matchUserTurn = "Based on the lawyer database and case details provided in the system instructions, " +
	"please identify and return the best matching lawyer in the required JSON format."

// LawyerMatcher picks one candidate lawyer for a case. Selection judgment is
// delegated entirely to the model; this component only orchestrates and
// defensively parses the answer.
type LawyerMatcher struct {
	Cases   CaseStore
	Lawyers LawyerStore
	AI      Completer
}

func NewLawyerMatcher(cases CaseStore, lawyers LawyerStore, completer Completer) *LawyerMatcher {
	return &LawyerMatcher{Cases: cases, Lawyers: lawyers, AI: completer}
}

// Recommend loads the owned case and the full candidate table, asks the
// gateway once, and resolves the returned id. A completion that is not JSON
// or names no usable candidate is an UpstreamDataError carrying the raw
// answer, distinct from a transport failure.
func (m *LawyerMatcher) Recommend(ctx context.Context, p auth.Principal, caseID string) (model.Lawyer, error) {
	c, err := m.Cases.GetForUser(ctx, caseID, p.AccountID)
	if err != nil {
		return model.Lawyer{}, err
	}
	lawyers, err := m.Lawyers.ListAll(ctx)
	if err != nil {
		return model.Lawyer{}, err
	}

	history := string(c.HistoryJSON)
	if history == "" {
		history = "[]"
	}
	system := prompt.LawyerMatch(lawyers, history, c.CaseType, c.CaseDescription,
		c.Location, formatDate(c.ProsecuteDate))

	raw, err := m.AI.CompleteOnce(ctx, matchUserTurn, system)
	if err != nil {
		return model.Lawyer{}, err
	}

	clean, ok := ai.ExtractJSON(raw)
	if !ok {
		return model.Lawyer{}, &UpstreamDataError{Msg: "completion was not valid JSON", Raw: raw}
	}
	var picked struct {
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(clean), &picked); err != nil || picked.ID == 0 {
		return model.Lawyer{}, &UpstreamDataError{Msg: "completion omitted the lawyer id", Raw: raw}
	}

	lawyer, err := m.Lawyers.GetByID(ctx, picked.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Lawyer{}, &UpstreamDataError{Msg: "completion named an unknown lawyer", Raw: raw}
	}
	if err != nil {
		return model.Lawyer{}, err
	}
	return lawyer, nil
}
