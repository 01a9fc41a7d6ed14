package resolve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/marker"
	"github.com/postflow/resolve-mcp/internal/resolve"
	"github.com/postflow/resolve-mcp/internal/resolve/resolvetest"
)

func TestClientStartsDisconnected(t *testing.T) {
	c, err := resolvetest.NewClient(resolvetest.Connected())
	require.NoError(t, err)
	assert.Equal(t, resolve.StateDisconnected, c.State())
	assert.False(t, c.Connected())
}

func TestConnectProbesCapabilities(t *testing.T) {
	fake := resolvetest.Connected()
	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, resolve.StateConnected, c.State())
	assert.True(t, c.Connected())
	assert.Equal(t, "19.0.2", c.Version())

	caps := c.Capabilities()
	assert.True(t, caps.Full())
	assert.Equal(t, 10, caps.Count())
}

func TestConnectIsIdempotent(t *testing.T) {
	fake := resolvetest.Connected()
	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)

	require.NoError(t, c.Connect(context.Background()))
	firstProbe := len(fake.CallsTo("GetProjectManager"))
	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, firstProbe, len(fake.CallsTo("GetProjectManager")))
}

func TestLazyConnectOnFirstCall(t *testing.T) {
	fake := resolvetest.Connected()
	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)

	// No explicit Connect; the first operation triggers it.
	fake.OnResult("GetCurrentPage", "edit")
	current, err := c.CurrentPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "edit", current)
	assert.True(t, c.Connected())
}

func TestConnectDegradedOnOldVersion(t *testing.T) {
	fake := resolvetest.Connected()
	fake.OnResult("GetVersionString", "17.4.6")
	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, resolve.StateDegraded, c.State())
	assert.True(t, c.Connected())
}

func TestProbeRecordsPartialCapabilities(t *testing.T) {
	fake := resolvetest.Connected()
	// No project open: everything below the project manager is dark.
	fake.OnVoid("GetCurrentProject")
	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)

	require.NoError(t, c.Connect(context.Background()))
	caps := c.Capabilities()
	assert.True(t, caps.GetProjectManager)
	assert.True(t, caps.GetProjectList)
	assert.False(t, caps.GetCurrentProject)
	assert.False(t, caps.GetMediaPool)
	assert.False(t, caps.Full())
}

func TestCloseIsTerminal(t *testing.T) {
	fake := resolvetest.Connected()
	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Close())
	assert.Equal(t, resolve.StateClosed, c.State())
	assert.True(t, fake.Closed())

	err = c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConnection))
}

func TestProjectHierarchy(t *testing.T) {
	fake := resolvetest.Connected()
	fake.OnResult("tl.GetName", "Main Cut")
	fake.OnResult("GetStartFrame", 86400)
	fake.OnResult("tl.GetSetting", "24.0")

	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)
	ctx := context.Background()

	pm, err := c.ProjectManager(ctx)
	require.NoError(t, err)
	project, err := pm.CurrentProject(ctx)
	require.NoError(t, err)
	name, err := project.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Demo", name)

	tl, err := project.CurrentTimeline(ctx)
	require.NoError(t, err)
	tlName, err := tl.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Main Cut", tlName)

	start, err := tl.StartFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 86400, start)

	fps, err := tl.FrameRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24.0, fps)
}

func TestCurrentProjectUnavailable(t *testing.T) {
	fake := resolvetest.Connected()
	fake.OnVoid("GetCurrentProject")

	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)
	ctx := context.Background()

	pm, err := c.ProjectManager(ctx)
	require.NoError(t, err)
	_, err = pm.CurrentProject(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnavailable))
}

func TestVendorErrorSurfacesAsVendorKind(t *testing.T) {
	fake := resolvetest.Connected()
	fake.OnError("LoadProject", "TypeError: project locked")

	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)
	ctx := context.Background()

	pm, err := c.ProjectManager(ctx)
	require.NoError(t, err)
	_, err = pm.LoadProject(ctx, "Other")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindVendor))
	assert.Contains(t, err.Error(), "project locked")
}

func TestTimelineMarkers(t *testing.T) {
	fake := resolvetest.Connected()
	fake.OnResult("GetMarkers", map[string]map[string]any{
		"120": {"color": "Red", "name": "fix flash", "note": "", "duration": 1, "customData": ""},
		"240": {"color": "Blue", "name": "music in", "note": "swell", "duration": 24, "customData": "cue-7"},
	})

	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)
	ctx := context.Background()

	pm, err := c.ProjectManager(ctx)
	require.NoError(t, err)
	project, err := pm.CurrentProject(ctx)
	require.NoError(t, err)
	tl, err := project.CurrentTimeline(ctx)
	require.NoError(t, err)

	markers, err := tl.Markers(ctx)
	require.NoError(t, err)
	require.Len(t, markers, 2)

	byFrame := map[int]marker.Marker{}
	for _, m := range markers {
		byFrame[m.Frame] = m
	}
	assert.Equal(t, "fix flash", byFrame[120].Name)
	assert.Equal(t, 24, byFrame[240].Duration)
	assert.Equal(t, "cue-7", byFrame[240].CustomData)
}

func TestAddMarkerForwardsAllFields(t *testing.T) {
	fake := resolvetest.Connected()
	fake.OnResult("AddMarker", true)

	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)
	ctx := context.Background()

	pm, _ := c.ProjectManager(ctx)
	project, _ := pm.CurrentProject(ctx)
	tl, err := project.CurrentTimeline(ctx)
	require.NoError(t, err)

	ok, err := tl.AddMarker(ctx, marker.Marker{
		Frame: 48, Color: "Green", Name: "n", Note: "o", Duration: 2, CustomData: "d",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	calls := fake.CallsTo("AddMarker")
	require.Len(t, calls, 1)
	assert.Equal(t, []any{48, "Green", "n", "o", 2, "d"}, calls[0].Args)
}

func TestItemsInTrack(t *testing.T) {
	fake := resolvetest.Connected()
	fake.OnHandles("GetItemListInTrack", "item1", "item2")
	fake.OnResult("item1.GetName", "clip A")
	fake.OnResult("item2.GetName", "clip B")

	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)
	ctx := context.Background()

	pm, _ := c.ProjectManager(ctx)
	project, _ := pm.CurrentProject(ctx)
	tl, err := project.CurrentTimeline(ctx)
	require.NoError(t, err)

	items, err := tl.ItemsInTrack(ctx, "video", 1)
	require.NoError(t, err)
	require.Len(t, items, 2)

	name, err := items[1].Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "clip B", name)
}

func TestFrameRateRejectsGarbage(t *testing.T) {
	fake := resolvetest.Connected()
	fake.OnResult("tl.GetSetting", "not-a-rate")

	c, err := resolvetest.NewClient(fake)
	require.NoError(t, err)
	ctx := context.Background()

	pm, _ := c.ProjectManager(ctx)
	project, _ := pm.CurrentProject(ctx)
	tl, err := project.CurrentTimeline(ctx)
	require.NoError(t, err)

	_, err = tl.FrameRate(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindVendor))
}
