package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shihaotian/ai-legal-assistant/internal/model"
	"github.com/shihaotian/ai-legal-assistant/internal/repository"
)

type fakeLawyers struct {
	byID map[uint64]model.Lawyer
}

func (f *fakeLawyers) GetByID(_ context.Context, id uint64) (model.Lawyer, error) {
	l, ok := f.byID[id]
	if !ok {
		return model.Lawyer{}, repository.ErrNotFound
	}
	return l, nil
}

func (f *fakeLawyers) ListAll(_ context.Context) ([]model.Lawyer, error) {
	out := make([]model.Lawyer, 0, len(f.byID))
	for _, l := range f.byID {
		out = append(out, l)
	}
	return out, nil
}

func matcherFixture(reply string) (*LawyerMatcher, *fakeCompleter) {
	cases := newFakeCases()
	cases.byID["c1"] = model.Case{
		ID:              "c1",
		UserID:          testPrincipal.AccountID,
		CaseType:        "labor",
		CaseDescription: "unpaid overtime",
		Location:        "Denver",
	}
	lawyers := &fakeLawyers{byID: map[uint64]model.Lawyer{
		101: {ID: 101, Name: "Dana Reeve", Expertise: "labor law"},
		102: {ID: 102, Name: "Sam Ortiz", Expertise: "family law"},
	}}
	completer := &fakeCompleter{reply: reply}
	return NewLawyerMatcher(cases, lawyers, completer), completer
}

func TestRecommendResolvesLawyer(t *testing.T) {
	m, completer := matcherFixture(`{"id": 101}`)

	lawyer, err := m.Recommend(context.Background(), testPrincipal, "c1")
	require.NoError(t, err)
	assert.Equal(t, uint64(101), lawyer.ID)
	assert.Equal(t, "Dana Reeve", lawyer.Name)

	// The candidate table and the case details both ride in the system
	// instructions.
	assert.Contains(t, completer.lastSystem, "Dana Reeve")
	assert.Contains(t, completer.lastSystem, "unpaid overtime")
}

func TestRecommendAcceptsFencedAnswer(t *testing.T) {
	m, _ := matcherFixture("```json\n{\"id\": 102}\n```")

	lawyer, err := m.Recommend(context.Background(), testPrincipal, "c1")
	require.NoError(t, err)
	assert.Equal(t, uint64(102), lawyer.ID)
}

func TestRecommendNonJSONAnswer(t *testing.T) {
	m, _ := matcherFixture("I would suggest lawyer 101, they seem great.")

	_, err := m.Recommend(context.Background(), testPrincipal, "c1")
	var ude *UpstreamDataError
	require.ErrorAs(t, err, &ude)
	assert.Contains(t, ude.Raw, "lawyer 101")
}

func TestRecommendMissingID(t *testing.T) {
	m, _ := matcherFixture(`{"name": "Dana Reeve"}`)

	_, err := m.Recommend(context.Background(), testPrincipal, "c1")
	var ude *UpstreamDataError
	require.ErrorAs(t, err, &ude)
}

func TestRecommendUnknownLawyerID(t *testing.T) {
	m, _ := matcherFixture(`{"id": 999}`)

	_, err := m.Recommend(context.Background(), testPrincipal, "c1")
	var ude *UpstreamDataError
	require.ErrorAs(t, err, &ude)
	assert.Contains(t, ude.Raw, "999")
}

func TestRecommendRequiresOwnedCase(t *testing.T) {
	m, _ := matcherFixture(`{"id": 101}`)

	_, err := m.Recommend(context.Background(), testPrincipal, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
