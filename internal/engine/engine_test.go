package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runcell/runcell/internal/doctree"
	"github.com/runcell/runcell/internal/engine"
	"github.com/runcell/runcell/internal/overlay"
	"github.com/runcell/runcell/internal/testutil"
)

const pySource = "x = 1\ny = x + 123\n" // 18 runes: block at pos 5 has size 20, anchor 25

func pyBlock(lang string) *doctree.Node {
	return &doctree.Node{
		Kind:  "code_block",
		Attrs: map[string]string{doctree.AttrLanguage: lang},
		Text:  pySource,
	}
}

func docTree(version int64, children ...*doctree.Node) *doctree.Tree {
	return doctree.NewTree(version, &doctree.Node{Kind: "doc", Children: children})
}

// oneBlockTree has a paragraph "ab" then a matching python block:
// block pos 5, size 20, anchor 25.
func oneBlockTree(version int64) *doctree.Tree {
	return docTree(version,
		&doctree.Node{Kind: "paragraph", Text: "ab"},
		pyBlock("python"),
	)
}

func TestEngine_Init_CreatesContainersAndDefersRender(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host)

	o, err := e.Init(oneBlockTree(1))
	require.NoError(t, err)

	require.Equal(t, 1, o.Len())
	assert.Equal(t, 25, o.Descriptors()[0].Anchor)
	assert.Equal(t, []int{25}, e.CachedAnchors())

	ctr, ok := e.Container(25)
	require.True(t, ok)
	rc := ctr.(*engine.RunnerContainer)
	assert.Equal(t, 0, rc.Renders(), "hydration never runs synchronously with tree update")

	require.True(t, host.FireTick())
	assert.Equal(t, 1, rc.Renders())
	assert.Equal(t, overlay.Payload{Source: pySource, Language: "python"}, rc.Payload())
}

func TestEngine_EndToEnd_RemapThenLanguageFlip(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host)

	// init: one matching block, anchor 25, one container.
	o1, err := e.Init(oneBlockTree(1))
	require.NoError(t, err)
	require.Equal(t, 1, o1.Len())
	first, ok := e.Container(25)
	require.True(t, ok)

	// Insert 3 characters before the block without changing block content:
	// remap path, anchor 25 -> 28, same container instance, no lifecycle calls.
	statsBefore := e.Stats()
	tx := &doctree.Transaction{
		Before: oneBlockTree(1),
		After: docTree(2,
			&doctree.Node{Kind: "paragraph", Text: "abxyz"},
			pyBlock("python"),
		),
		DocChanged: false,
		Mapping:    doctree.InsertMap{At: 4, Len: 3},
	}
	o2, err := e.Apply(tx, o1)
	require.NoError(t, err)

	require.Equal(t, 1, o2.Len())
	assert.Equal(t, 28, o2.Descriptors()[0].Anchor)
	assert.Equal(t, []int{28}, e.CachedAnchors())

	moved, ok := e.Container(28)
	require.True(t, ok)
	assert.Same(t, first, moved, "remap preserves container identity")

	statsAfter := e.Stats()
	assert.Equal(t, statsBefore.Created, statsAfter.Created, "no creates on remap path")
	assert.Equal(t, statsBefore.Destroyed, statsAfter.Destroyed, "no destroys on remap path")
	assert.Equal(t, statsBefore.Rebuilds, statsAfter.Rebuilds, "no scan on remap path")

	// Flip the block's language to an unrecognized value: rebuild path,
	// empty overlay, container destroyed.
	tx2 := &doctree.Transaction{
		Before: tx.After,
		After: docTree(3,
			&doctree.Node{Kind: "paragraph", Text: "abxyz"},
			pyBlock("go"),
		),
		DocChanged: true,
	}
	o3, err := e.Apply(tx2, o2)
	require.NoError(t, err)

	assert.Equal(t, 0, o3.Len())
	assert.Equal(t, 0, e.CacheLen())
	assert.False(t, first.Connected(), "container destroyed when its anchor left the active set")
}

func TestEngine_Apply_RebuildPreservesIdentityAtStableAnchor(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host)

	o1, err := e.Init(oneBlockTree(1))
	require.NoError(t, err)
	before, _ := e.Container(25)

	// Content elsewhere changed: rebuild path, but the block's anchor is
	// unchanged, so its container must be reused, not recreated.
	tx := &doctree.Transaction{
		Before:     oneBlockTree(1),
		After:      oneBlockTree(2),
		DocChanged: true,
	}
	o2, err := e.Apply(tx, o1)
	require.NoError(t, err)
	require.Equal(t, 1, o2.Len())

	after, ok := e.Container(25)
	require.True(t, ok)
	assert.Same(t, before, after, "rebuild at a stable anchor reuses the container instance")
	assert.Equal(t, []int{25}, host.CreatedAnchors(), "only the initial create happened")
}

func TestEngine_Apply_RunningStateSurvivesRebuild(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host)

	o1, err := e.Init(oneBlockTree(1))
	require.NoError(t, err)

	ctr, _ := e.Container(25)
	ctr.(*engine.RunnerContainer).SetRunning(true)

	tx := &doctree.Transaction{Before: oneBlockTree(1), After: oneBlockTree(2), DocChanged: true}
	_, err = e.Apply(tx, o1)
	require.NoError(t, err)

	after, _ := e.Container(25)
	assert.True(t, after.(*engine.RunnerContainer).Running(), "in-widget state survives reconciliation")
}

func TestEngine_Apply_NilPreviousForcesRebuild(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host)

	tx := &doctree.Transaction{
		Before:     oneBlockTree(1),
		After:      oneBlockTree(2),
		DocChanged: false,
	}
	o, err := e.Apply(tx, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, o.Len())
	assert.Equal(t, 1, e.Stats().Rebuilds)
}

func TestEngine_Render_ReadsLatestOverlay(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host)

	o1, err := e.Init(oneBlockTree(1))
	require.NoError(t, err)

	// Second transaction lands before the tick fires: re-typed block source.
	retyped := &doctree.Node{
		Kind:  "code_block",
		Attrs: map[string]string{doctree.AttrLanguage: "python"},
		Text:  "x = 1\ny = x + 999\n",
	}
	tx := &doctree.Transaction{
		Before: oneBlockTree(1),
		After: docTree(2,
			&doctree.Node{Kind: "paragraph", Text: "ab"},
			retyped,
		),
		DocChanged: true,
	}
	_, err = e.Apply(tx, o1)
	require.NoError(t, err)

	assert.Equal(t, 1, host.PendingTicks(), "transactions before the tick coalesce into one render task")
	host.FireAll()

	ctr, _ := e.Container(25)
	rc := ctr.(*engine.RunnerContainer)
	assert.Equal(t, 1, rc.Renders(), "single render pass for both transactions")
	assert.Equal(t, "x = 1\ny = x + 999\n", rc.Payload().Source, "render reflects only the final overlay")
}

func TestEngine_Render_Idempotent(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host)

	_, err := e.Init(oneBlockTree(1))
	require.NoError(t, err)

	require.NoError(t, e.Render())
	require.NoError(t, e.Render())

	ctr, _ := e.Container(25)
	assert.Equal(t, 2, ctr.(*engine.RunnerContainer).Renders())
}

func TestEngine_Render_SkipsDetachedContainers(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host)

	_, err := e.Init(oneBlockTree(1))
	require.NoError(t, err)

	// Detach behind the engine's back, as a torn-down view would.
	ctr, _ := e.Container(25)
	require.NoError(t, ctr.Unmount())

	require.NoError(t, e.Render(), "detached container is skipped, not an error")
	assert.Equal(t, 1, e.Stats().SkippedDetached)
}

func TestEngine_Destroy_TearsDownEverything(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host)

	o, err := e.Init(oneBlockTree(1))
	require.NoError(t, err)
	ctr, _ := e.Container(25)

	require.NoError(t, e.Destroy())

	assert.Equal(t, 0, e.CacheLen())
	assert.False(t, ctr.Connected())

	// The pending render tick fires after destroy and must be a no-op.
	host.FireAll()
	assert.False(t, ctr.Connected())

	_, err = e.Apply(&doctree.Transaction{After: oneBlockTree(2), DocChanged: true}, o)
	assert.ErrorIs(t, err, engine.ErrEngineDestroyed)
	assert.ErrorIs(t, e.Render(), engine.ErrEngineDestroyed)
	require.NoError(t, e.Destroy(), "destroy is idempotent")
}

func TestEngine_Destroy_JoinsUnmountFailures(t *testing.T) {
	host := testutil.NewTickHost()
	boom := errors.New("widget stuck")
	host.FailUnmountAt(25, boom)
	e := engine.New(host)

	_, err := e.Init(oneBlockTree(1))
	require.NoError(t, err)

	err = e.Destroy()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, e.CacheLen(), "cache cleared despite the failure")
}

func TestEngine_Reconcile_CreateFailureDoesNotBlockOthers(t *testing.T) {
	host := testutil.NewTickHost()
	boom := errors.New("no slot")
	e := engine.New(host)

	// Two matching blocks; creation fails for the first anchor.
	tree := docTree(1, pyBlock("python"), pyBlock("py"))
	firstAnchor := overlay.Build(tree, overlay.NewScanner().Scan(tree)).Descriptors()[0].Anchor
	host.FailCreateAt(firstAnchor, boom)

	o, err := e.Init(tree)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, o.Len(), "overlay still reflects the document")
	assert.Equal(t, 1, e.CacheLen(), "the other container was still created")
}

func TestEngine_Apply_UnmountFailureIsolatedDuringRebuild(t *testing.T) {
	host := testutil.NewTickHost()
	boom := errors.New("stuck")
	e := engine.New(host)

	// Two 18-rune blocks back to back: anchors 21 and 41. Containers at an
	// anchor armed with FailUnmountAt are wrapped at creation time, so the
	// failure must be armed before Init.
	host.FailUnmountAt(21, boom)

	tree := docTree(1, pyBlock("python"), pyBlock("py"))
	o1, err := e.Init(tree)
	require.NoError(t, err)
	require.Equal(t, 2, e.CacheLen())

	// Re-init cache against an empty document: both containers go away,
	// the failing one does not block the other.
	tx := &doctree.Transaction{
		Before:     tree,
		After:      docTree(2, &doctree.Node{Kind: "paragraph", Text: "gone"}),
		DocChanged: true,
	}
	_, err = e.Apply(tx, o1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, e.CacheLen(), "reconciliation completed for the remaining positions")
}

func TestEngine_Apply_RemapOfEmptyOverlay(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host)

	o1, err := e.Init(docTree(1, &doctree.Node{Kind: "paragraph", Text: "plain"}))
	require.NoError(t, err)
	require.Equal(t, 0, o1.Len())

	tx := &doctree.Transaction{
		Before:     docTree(1, &doctree.Node{Kind: "paragraph", Text: "plain"}),
		After:      docTree(2, &doctree.Node{Kind: "paragraph", Text: "plain"}),
		DocChanged: false,
		Mapping:    doctree.IdentityMap{},
	}
	o2, err := e.Apply(tx, o1)
	require.NoError(t, err)
	assert.Equal(t, 0, o2.Len())
	assert.Equal(t, 0, e.CacheLen())
}

func TestEngine_WithScanner(t *testing.T) {
	host := testutil.NewTickHost()
	e := engine.New(host, engine.WithScanner(overlay.NewScanner(overlay.WithLanguages("lua"))))

	o, err := e.Init(oneBlockTree(1))
	require.NoError(t, err)
	assert.Equal(t, 0, o.Len(), "python block not matched by a lua-only scanner")
}
