package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipbook/backend/internal/dto"
	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefStore struct {
	refs []*models.IdentityRef
}

func (f *fakeRefStore) Upsert(_ context.Context, ref *models.IdentityRef) error {
	f.refs = append(f.refs, ref)
	return nil
}

func TestSyncUpsertsFetchedIdentity(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/identities/"+id.String(), r.URL.Path)
		_ = json.NewEncoder(w).Encode(dto.IdentityResponse{
			ID:       id,
			Email:    "barber@example.com",
			FullName: "Jamie Cutter",
		})
	}))
	defer srv.Close()

	refs := &fakeRefStore{}
	c := NewClient(srv.URL, refs)

	require.NoError(t, c.Sync(context.Background(), id))
	require.Len(t, refs.refs, 1)
	assert.Equal(t, id, refs.refs[0].ID)
	assert.Equal(t, "barber@example.com", refs.refs[0].Email)
	assert.Equal(t, "Jamie Cutter", refs.refs[0].FullName)
}

func TestSyncReportsUnreadableIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	refs := &fakeRefStore{}
	c := NewClient(srv.URL, refs)

	assert.Error(t, c.Sync(context.Background(), uuid.New()))
	assert.Empty(t, refs.refs)
}
