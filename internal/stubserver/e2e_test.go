package stubserver_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eacsecretariat/eacassist/internal/api"
	apierrors "github.com/eacsecretariat/eacassist/internal/errors"
	"github.com/eacsecretariat/eacassist/internal/models"
	"github.com/eacsecretariat/eacassist/internal/session"
	"github.com/eacsecretariat/eacassist/internal/stubserver"
)

func TestClientAgainstStub(t *testing.T) {
	h := stubserver.NewHandler(nil, zap.NewNop())
	srv := httptest.NewServer(stubserver.NewRouter(h))

	client, err := api.NewClient(srv.URL, api.WithTimeout(5*time.Second))
	require.NoError(t, err)

	ctrl, err := session.NewController(client, session.WithSkin(models.SkinEAC))
	require.NoError(t, err)

	ctx := context.Background()
	ctrl.Initialize(ctx)

	reply, err := ctrl.Submit(ctx, "What is the EAC motto?")
	require.NoError(t, err)
	assert.Equal(t, "The motto of the EAC is 'One People, One Destiny'.", reply.Content)
	assert.Equal(t, "Official EAC Factsheet", reply.Source)

	reply, err = ctrl.Submit(ctx, "Tell me a joke")
	require.NoError(t, err)
	assert.Equal(t, stubserver.FallbackAnswer, reply.Content)
	assert.False(t, reply.HasSource())

	// Initialize's refresh has either landed or been cancelled by now
	ctrl.Close()
	assert.LessOrEqual(t, h.Refreshes(), int64(1))

	status, err := client.RefreshStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Refresh started", status.Status)

	srv.Close()

	reply, err = ctrl.Submit(ctx, "Where is the headquarters?")
	require.NoError(t, err)
	assert.Equal(t, models.SkinEAC.ConnectivityError, reply.Content)
	assert.False(t, ctrl.Waiting())

	// greeting + three exchanges
	assert.Equal(t, 7, ctrl.Len())
}

func TestClientAgainstStub_StartingUp(t *testing.T) {
	h := stubserver.NewHandler(nil, zap.NewNop())
	h.SetReady(false)
	srv := httptest.NewServer(stubserver.NewRouter(h))
	defer srv.Close()

	client, err := api.NewClient(srv.URL, api.WithTimeout(5*time.Second))
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), "motto")
	require.Error(t, err)
	assert.Equal(t, 503, apierrors.GetHTTPStatus(err))
	assert.True(t, apierrors.IsAPIError(err))
}
