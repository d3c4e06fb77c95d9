package telemetry

import (
	"runtime"
	"sync"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func disabledProfilerConfig() ProfilerConfig {
	return ProfilerConfig{
		Enabled:         false,
		ServerAddress:   "http://localhost:4040",
		ApplicationName: "gridbase-backend",
	}
}

func TestNewProfilerDisabled(t *testing.T) {
	p, err := NewProfiler(disabledProfilerConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.False(t, p.IsEnabled())
	assert.Equal(t, "gridbase-backend", p.GetConfig().ApplicationName)
	assert.NoError(t, p.Stop())
}

func TestNewProfilerValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*ProfilerConfig)
		wantErr string
	}{
		{
			name:    "missing server address",
			mutate:  func(cfg *ProfilerConfig) { cfg.ServerAddress = "" },
			wantErr: "server address is required",
		},
		{
			name:    "missing application name",
			mutate:  func(cfg *ProfilerConfig) { cfg.ApplicationName = "" },
			wantErr: "application name is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := disabledProfilerConfig()
			cfg.Enabled = true
			tc.mutate(&cfg)

			p, err := NewProfiler(cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewProfilerEnabled(t *testing.T) {
	if testing.Short() {
		t.Skip("requires a Pyroscope server")
	}

	cfg := disabledProfilerConfig()
	cfg.Enabled = true
	cfg.ProfileCPU = true
	cfg.ProfileAllocSpace = true
	cfg.ProfileInuseSpace = true

	p, err := NewProfiler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
}

func TestProfilerStop(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		p, err := NewProfiler(ProfilerConfig{Enabled: false}, zaptest.NewLogger(t))
		require.NoError(t, err)

		for range 3 {
			assert.NoError(t, p.Stop())
		}
	})

	t.Run("concurrent", func(t *testing.T) {
		p, err := NewProfiler(ProfilerConfig{Enabled: false}, zaptest.NewLogger(t))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = p.Stop()
			}()
		}
		wg.Wait()
	})
}

func TestProfileTypes(t *testing.T) {
	cases := []struct {
		name string
		cfg  ProfilerConfig
		want []pyroscope.ProfileType
	}{
		{
			name: "none enabled",
			cfg:  ProfilerConfig{},
			want: []pyroscope.ProfileType{},
		},
		{
			name: "cpu only",
			cfg:  ProfilerConfig{ProfileCPU: true},
			want: []pyroscope.ProfileType{pyroscope.ProfileCPU},
		},
		{
			name: "memory pair",
			cfg:  ProfilerConfig{ProfileAllocObjects: true, ProfileAllocSpace: true},
			want: []pyroscope.ProfileType{pyroscope.ProfileAllocObjects, pyroscope.ProfileAllocSpace},
		},
		{
			name: "contention profiles",
			cfg: ProfilerConfig{
				ProfileMutexCount:    true,
				ProfileMutexDuration: true,
				ProfileBlockCount:    true,
				ProfileBlockDuration: true,
			},
			want: []pyroscope.ProfileType{
				pyroscope.ProfileMutexCount,
				pyroscope.ProfileMutexDuration,
				pyroscope.ProfileBlockCount,
				pyroscope.ProfileBlockDuration,
			},
		},
		{
			name: "everything",
			cfg: ProfilerConfig{
				ProfileCPU:           true,
				ProfileAllocObjects:  true,
				ProfileAllocSpace:    true,
				ProfileInuseObjects:  true,
				ProfileInuseSpace:    true,
				ProfileGoroutines:    true,
				ProfileMutexCount:    true,
				ProfileMutexDuration: true,
				ProfileBlockCount:    true,
				ProfileBlockDuration: true,
			},
			want: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
				pyroscope.ProfileGoroutines,
				pyroscope.ProfileMutexCount,
				pyroscope.ProfileMutexDuration,
				pyroscope.ProfileBlockCount,
				pyroscope.ProfileBlockDuration,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.profileTypes())
		})
	}
}

func TestApplyRuntimeProfileRates(t *testing.T) {
	// SetMutexProfileFraction returns the previous value, so the global
	// runtime state can be restored.
	previous := runtime.SetMutexProfileFraction(0)
	t.Cleanup(func() {
		runtime.SetMutexProfileFraction(previous)
		runtime.SetBlockProfileRate(0)
	})

	t.Run("explicit fraction", func(t *testing.T) {
		applyRuntimeProfileRates(ProfilerConfig{
			ProfileMutexCount:    true,
			MutexProfileFraction: 10,
		}, zaptest.NewLogger(t))
		assert.Equal(t, 10, runtime.SetMutexProfileFraction(0))
	})

	t.Run("defaults to 5 when unset", func(t *testing.T) {
		applyRuntimeProfileRates(ProfilerConfig{
			ProfileMutexDuration: true,
			ProfileBlockCount:    true,
		}, zaptest.NewLogger(t))
		assert.Equal(t, 5, runtime.SetMutexProfileFraction(0))
	})

	t.Run("untouched when profiles disabled", func(t *testing.T) {
		runtime.SetMutexProfileFraction(0)
		applyRuntimeProfileRates(ProfilerConfig{}, zaptest.NewLogger(t))
		assert.Equal(t, 0, runtime.SetMutexProfileFraction(0))
	})
}

func TestHostTags(t *testing.T) {
	t.Run("empty without environment", func(t *testing.T) {
		t.Setenv("HOSTNAME", "")
		t.Setenv("POD_NAME", "")
		assert.Empty(t, hostTags())
	})

	t.Run("picks up host identity", func(t *testing.T) {
		t.Setenv("HOSTNAME", "gridbase-7f9c")
		t.Setenv("POD_NAME", "gridbase-backend-0")
		assert.Equal(t, map[string]string{
			"hostname": "gridbase-7f9c",
			"pod":      "gridbase-backend-0",
		}, hostTags())
	})
}

func TestProfilerConfigExtras(t *testing.T) {
	cfg := disabledProfilerConfig()
	cfg.DisableGCRuns = true
	cfg.BasicAuthUser = "grafana"
	cfg.BasicAuthPassword = "secret"

	p, err := NewProfiler(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	got := p.GetConfig()
	assert.True(t, got.DisableGCRuns)
	assert.Equal(t, "grafana", got.BasicAuthUser)
	assert.Equal(t, "secret", got.BasicAuthPassword)
	assert.NoError(t, p.Stop())
}
