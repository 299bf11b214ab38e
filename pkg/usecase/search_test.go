package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
	"github.com/secmon-lab/rolodex/pkg/domain/types"
	"github.com/secmon-lab/rolodex/pkg/usecase"
)

func fixtureListing() model.CandidateListing {
	return model.CandidateListing{
		types.EntityKindPerson: {
			{ID: "5", Name: "alice"},
			{ID: "12", Name: "Bob"},
			{ID: "7", Name: "Alan"},
		},
		types.EntityKindTeam: {
			{ID: "9", Name: "Platform"},
			{ID: "3", Name: "alice"},
		},
	}
}

func candidateIDs(refs []model.ResolvedReference) []types.EntityID {
	ids := make([]types.EntityID, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	return ids
}

func TestIsServerQuery(t *testing.T) {
	testCases := []struct {
		query string
		want  bool
	}{
		{"", false},
		{"a", false},
		{"  a  ", false},
		{"é", false},
		{"ab", true},
		{" ab ", true},
		{"日本", true},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%q", tc.query), func(t *testing.T) {
			gt.Value(t, usecase.IsServerQuery(tc.query)).Equal(tc.want)
		})
	}
}

func TestSearchUseCase_SearchCandidates(t *testing.T) {
	ctx := context.Background()

	t.Run("short query filters the listing", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t))
		refs, err := uc.Search.SearchCandidates(ctx, "a", peopleAndTeams, nil, fixtureListing())
		gt.NoError(t, err).Required()

		// sorted by name without case, person alice before team alice
		gt.Value(t, candidateIDs(refs)).Equal([]types.EntityID{"7", "5", "3", "9"})
		gt.Value(t, refs[1].Kind).Equal(types.EntityKindPerson)
		gt.Value(t, refs[2].Kind).Equal(types.EntityKindTeam)
	})

	t.Run("empty query returns listing entries", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t))
		refs, err := uc.Search.SearchCandidates(ctx, "", peopleAndTeams, []types.EntityID{"12"}, fixtureListing())
		gt.NoError(t, err).Required()
		gt.Value(t, candidateIDs(refs)).Equal([]types.EntityID{"7", "5", "3", "9"})
	})

	t.Run("empty query is capped", func(t *testing.T) {
		listing := model.CandidateListing{}
		for i := range 30 {
			listing[types.EntityKindPerson] = append(listing[types.EntityKindPerson], model.ForeignEntitySummary{
				ID:   types.EntityID(fmt.Sprint(100 + i)),
				Name: fmt.Sprintf("person %02d", i),
			})
		}
		uc := usecase.New(newFixtureRepo(t))
		refs, err := uc.Search.SearchCandidates(ctx, "", peopleAndTeams, nil, listing)
		gt.NoError(t, err).Required()
		gt.Array(t, refs).Length(usecase.EmptyQueryLimit)
	})

	t.Run("server query", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t))
		refs, err := uc.Search.SearchCandidates(ctx, "al", peopleAndTeams, nil, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, refs).Length(1).Required()
		gt.Value(t, refs[0]).Equal(model.ResolvedReference{
			ID: "5", Kind: types.EntityKindPerson, DisplayName: "Alice", Thumbnail: "https://example.com/alice.png",
		})
	})

	t.Run("server query limited to post types", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t))
		refs, err := uc.Search.SearchCandidates(ctx, "pl", []types.EntityKind{types.EntityKindPerson}, nil, nil)
		gt.NoError(t, err).Required()
		gt.Array(t, refs).Length(0)

		refs, err = uc.Search.SearchCandidates(ctx, "pl", []types.EntityKind{types.EntityKindTeam}, nil, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, candidateIDs(refs)).Equal([]types.EntityID{"9"})
	})

	t.Run("selected ids are excluded at every query length", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t))
		exclude := []types.EntityID{"5", "9"}

		for _, q := range []string{"", "a", "al", "alice", "pl"} {
			refs, err := uc.Search.SearchCandidates(ctx, q, peopleAndTeams, exclude, fixtureListing())
			gt.NoError(t, err).Required()
			for _, ref := range refs {
				gt.Value(t, ref.ID).NotEqual(types.EntityID("5")).Describef("query %q", q)
				gt.Value(t, ref.ID).NotEqual(types.EntityID("9")).Describef("query %q", q)
			}
		}
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t))
		refs, err := uc.Search.SearchCandidates(ctx, "zz", peopleAndTeams, nil, nil)
		gt.NoError(t, err).Required()
		gt.B(t, refs != nil).True()
		gt.Array(t, refs).Length(0)

		refs, err = uc.Search.SearchCandidates(ctx, "z", peopleAndTeams, nil, nil)
		gt.NoError(t, err).Required()
		gt.B(t, refs != nil).True()
	})
}

func TestFilterListing(t *testing.T) {
	refs := usecase.FilterListing("B", peopleAndTeams, nil, fixtureListing())
	gt.Value(t, candidateIDs(refs)).Equal([]types.EntityID{"12"})

	refs = usecase.FilterListing("x", peopleAndTeams, nil, nil)
	gt.B(t, refs != nil).True()
	gt.Array(t, refs).Length(0)
}

// waitUpdate returns the next update or fails after timeout
func waitUpdate(t *testing.T, updates <-chan usecase.SearchUpdate) usecase.SearchUpdate {
	t.Helper()
	select {
	case u := <-updates:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search update")
		return usecase.SearchUpdate{}
	}
}

func TestSearchSession(t *testing.T) {
	ctx := context.Background()

	t.Run("short query is applied immediately", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t), usecase.WithDebounce(10*time.Millisecond))
		updates := make(chan usecase.SearchUpdate, 8)
		session := uc.Search.NewSession(peopleAndTeams, fixtureListing(), func(u usecase.SearchUpdate) { updates <- u })
		defer session.Close()

		token := session.Query(ctx, "b", nil)
		u := waitUpdate(t, updates)
		gt.Value(t, u.Token).Equal(token)
		gt.Value(t, candidateIDs(u.Candidates)).Equal([]types.EntityID{"12"})
		gt.Value(t, session.Latest().Token).Equal(token)
	})

	t.Run("only the latest server query is applied", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t), usecase.WithDebounce(20*time.Millisecond))
		updates := make(chan usecase.SearchUpdate, 8)
		session := uc.Search.NewSession(peopleAndTeams, nil, func(u usecase.SearchUpdate) { updates <- u })
		defer session.Close()

		first := session.Query(ctx, "al", nil)
		last := session.Query(ctx, "pl", nil)
		gt.Value(t, first).NotEqual(last)

		u := waitUpdate(t, updates)
		gt.Value(t, u.Token).Equal(last)
		gt.Value(t, u.Query).Equal("pl")
		gt.NoError(t, u.Err)
		gt.Value(t, candidateIDs(u.Candidates)).Equal([]types.EntityID{"9"})

		select {
		case stale := <-updates:
			t.Errorf("unexpected update for token %d", stale.Token)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("newer query is delivered after an in-flight older one", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t), usecase.WithDebounce(time.Millisecond))
		entered := make(chan struct{})
		release := make(chan struct{})
		updates := make(chan usecase.SearchUpdate, 8)
		session := uc.Search.NewSession(peopleAndTeams, fixtureListing(), func(u usecase.SearchUpdate) {
			if u.Query == "al" {
				close(entered)
				<-release
			}
			updates <- u
		})
		defer session.Close()

		session.Query(ctx, "al", nil)
		<-entered

		done := make(chan uint64)
		go func() { done <- session.Query(ctx, "b", nil) }()
		time.Sleep(20 * time.Millisecond)
		close(release)
		latest := <-done

		gt.Value(t, waitUpdate(t, updates).Query).Equal("al")
		last := waitUpdate(t, updates)
		gt.Value(t, last.Token).Equal(latest)
		gt.Value(t, last.Query).Equal("b")
		gt.Value(t, session.Latest().Token).Equal(latest)
	})

	t.Run("server query honors exclusion", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t), usecase.WithDebounce(time.Millisecond))
		updates := make(chan usecase.SearchUpdate, 8)
		session := uc.Search.NewSession(peopleAndTeams, nil, func(u usecase.SearchUpdate) { updates <- u })
		defer session.Close()

		session.Query(ctx, "al", []types.EntityID{"5"})
		u := waitUpdate(t, updates)
		gt.Array(t, u.Candidates).Length(0)
	})

	t.Run("close drops a pending query", func(t *testing.T) {
		uc := usecase.New(newFixtureRepo(t), usecase.WithDebounce(20*time.Millisecond))
		updates := make(chan usecase.SearchUpdate, 8)
		session := uc.Search.NewSession(peopleAndTeams, nil, func(u usecase.SearchUpdate) { updates <- u })

		session.Query(ctx, "al", nil)
		session.Close()

		select {
		case u := <-updates:
			t.Errorf("unexpected update for token %d", u.Token)
		case <-time.After(100 * time.Millisecond):
		}
	})
}
