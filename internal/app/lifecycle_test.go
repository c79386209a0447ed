package app

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-disservice/internal/config"
	"github.com/dep2p/go-disservice/internal/mocks"
	"github.com/dep2p/go-disservice/pkg/lib/log"
)

func newApp(t *testing.T) App {
	t.Helper()
	log.Discard()

	cfg := config.NewConfig()
	cfg.Node.NodeID = "A"
	a, err := RunApp(context.Background(), NewBootstrap(cfg,
		WithTransmission(newTransmission(t)),
		WithSender(mocks.NewMockSender()),
		WithClock(clock.NewMock()),
		WithRegisterer(prometheus.NewRegistry()),
	))
	require.NoError(t, err)
	return a
}

func TestRunApp_StopReleasesWait(t *testing.T) {
	a := newApp(t)
	require.NotNil(t, a.Runtime())
	assert.Equal(t, "A", a.Runtime().PeerState.NodeID())
	assert.True(t, a.Runtime().Maintainer.Running())

	done := make(chan struct{})
	go func() {
		a.Wait()
		close(done)
	}()

	require.NoError(t, a.Stop())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop 之后 Wait 未返回")
	}
	assert.False(t, a.Runtime().Maintainer.Running())

	// 重复停止是空操作
	assert.NoError(t, a.Stop())
}

func TestRunApp_WaitAfterStop(t *testing.T) {
	a := newApp(t)
	require.NoError(t, a.Stop())
	// 已停止的应用 Wait 立即返回
	a.Wait()
}

func TestRunApp_BuildFailure(t *testing.T) {
	log.Discard()
	_, err := RunApp(context.Background(), NewBootstrap(nil, WithSender(mocks.NewMockSender())))
	assert.ErrorIs(t, err, ErrNoTransmission)
}
