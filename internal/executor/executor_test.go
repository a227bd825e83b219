package executor

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ternarybob/ndk/internal/collaborators"
	"github.com/ternarybob/ndk/internal/config"
	"github.com/ternarybob/ndk/internal/history"
	"github.com/ternarybob/ndk/pkg/bundle"
	"github.com/ternarybob/ndk/pkg/content"
	"github.com/ternarybob/ndk/pkg/uri"
)

// memKV is the same in-memory KVStore fake internal/history's tests use,
// grounded on the shared Get/Set/Delete/ListKeys contract.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memKV) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func res(path ...string) uri.ResourceURI {
	return uri.ResourceURI{Realm: "github", Subrealm: "acme", Path: path}
}

func knowledgeBody(r uri.ResourceURI) uri.KnowledgeURI {
	return uri.KnowledgeURI{Resource: r, Suffix: &uri.Suffix{Kind: uri.KindBody}}
}

// fakeConnector is a fake github-shaped connector: it recognises every
// reference under the "github" realm, and serves pre-seeded
// ObservedResults for a fixed map of resources.
type fakeConnector struct {
	mu        sync.Mutex
	bodies    map[string]*bundle.BundleBody
	collections map[string]*bundle.BundleCollection
	resolveErr map[string]error
	resolveCalls int
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		bodies:      map[string]*bundle.BundleBody{},
		collections: map[string]*bundle.BundleCollection{},
		resolveErr:  map[string]error{},
	}
}

func (f *fakeConnector) Locator(ctx context.Context, ref uri.Reference) (collaborators.Locator, bool, error) {
	if ref.Kind != uri.ReferenceKnowledge || ref.Knowledge.Resource.Realm != "github" {
		return collaborators.Locator{}, false, nil
	}
	return collaborators.Locator{Realm: "github", Value: ref.Knowledge.Resource.String()}, true, nil
}

func (f *fakeConnector) Resolve(ctx context.Context, locator collaborators.Locator, cached *history.MergedView) (collaborators.ResolveResult, error) {
	f.mu.Lock()
	f.resolveCalls++
	err := f.resolveErr[locator.Value]
	f.mu.Unlock()
	if err != nil {
		return collaborators.ResolveResult{}, err
	}
	return collaborators.ResolveResult{ShouldCache: true}, nil
}

func (f *fakeConnector) Observe(ctx context.Context, locator collaborators.Locator, observable uri.KnowledgeURI, resolved collaborators.ResolveResult) (collaborators.ObservedResult, error) {
	key := observable.Resource.String()
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.collections[key]; ok {
		return collaborators.ObservedResult{Bundle: &collaborators.ObservedBundle{Collection: c}, ShouldCache: true}, nil
	}
	if b, ok := f.bodies[key]; ok {
		return collaborators.ObservedResult{Bundle: &collaborators.ObservedBundle{Body: b}, ShouldCache: true}, nil
	}
	return collaborators.ObservedResult{Bundle: &collaborators.ObservedBundle{
		Body: &bundle.BundleBody{URI: observable, Chunks: []bundle.Chunk{{Text: content.Parse("hello", content.ModeData, content.LinkCitation)}}},
	}, ShouldCache: true}, nil
}

func newTestExecutor(conn *fakeConnector) *Executor {
	return NewExecutor([]collaborators.Connector{conn}, history.NewStore(newMemKV()), nil, config.DefaultTunables(), nil)
}

func TestMaxLoadModeAndExpandModePickTheStronger(t *testing.T) {
	require.Equal(t, LoadForce, MaxLoadMode(LoadAuto, LoadForce))
	require.Equal(t, LoadAuto, MaxLoadMode(LoadNone, LoadAuto))
	require.Equal(t, ExpandAuto, MaxExpandMode(ExpandNone, ExpandAuto))
}

func TestPendingStateUpsertAccumulatesStrongestRequest(t *testing.T) {
	ps := newPendingState()
	target := res("widgets", "1")

	r := ps.upsert(target, 1, ExpandNone, LoadAuto, []Observable{knowledgeBody(target)})
	require.Equal(t, 1, r.expandDepth)
	require.Equal(t, LoadAuto, r.loadMode)

	r2 := ps.upsert(target, 3, ExpandAuto, LoadForce, nil)
	require.Same(t, r, r2)
	require.Equal(t, 3, r.expandDepth, "expand depth should widen to the stronger request")
	require.Equal(t, ExpandAuto, r.expandMode)
	require.Equal(t, LoadForce, r.loadMode)
	require.Len(t, r.observe, 1, "the earlier observe entry must survive the upgrade")
}

func TestHasWorkExemptsLinkDependencyStubs(t *testing.T) {
	ps := newPendingState()
	target := res("widgets", "1")

	stub := ps.upsert(target, 0, ExpandNone, LoadNone, nil)
	require.False(t, stub.hasWork(), "a load-none entry with no observe set is a pure bookkeeping stub")

	loaded := ps.upsert(res("widgets", "2"), 0, ExpandNone, LoadAuto, []Observable{knowledgeBody(res("widgets", "2"))})
	require.True(t, loaded.hasWork())
}

func TestSelectBatchOrdersByDepthThenLoadThenURIDescending(t *testing.T) {
	ps := newPendingState()
	a := ps.upsert(res("a"), 0, ExpandNone, LoadAuto, []Observable{knowledgeBody(res("a"))})
	b := ps.upsert(res("b"), 2, ExpandNone, LoadAuto, []Observable{knowledgeBody(res("b"))})
	c := ps.upsert(res("c"), 2, ExpandNone, LoadAuto, []Observable{knowledgeBody(res("c"))})

	batch := selectBatch(ps, 10)
	require.Equal(t, []*pendingResult{c, b, a}, batch, "deeper expand_depth first, then descending resource URI")
}

func TestSelectBatchTruncatesToSize(t *testing.T) {
	ps := newPendingState()
	for _, p := range []string{"a", "b", "c"} {
		ps.upsert(res(p), 0, ExpandNone, LoadAuto, []Observable{knowledgeBody(res(p))})
	}
	require.Len(t, selectBatch(ps, 2), 2)
}

func TestExecuteQueryAllResolvesObservesAndAssemblesASingleResource(t *testing.T) {
	conn := newFakeConnector()
	target := res("widgets", "issues", "1")
	conn.bodies[target.String()] = &bundle.BundleBody{
		URI:    knowledgeBody(target),
		Chunks: []bundle.Chunk{{Text: content.Parse("issue body text", content.ModeData, content.LinkCitation)}},
	}

	e := newTestExecutor(conn)
	actions := []Action{{
		Kind:     ActionLoad,
		LoadURI:  target,
		LoadMode: LoadAuto,
		Observe:  []Observable{knowledgeBody(target)},
	}}

	out, err := e.ExecuteQueryAll(context.Background(), actions, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, out.Resources, 1)
	require.Equal(t, target, out.Resources[0].URI)
	require.Len(t, out.Resources[0].Bundles, 1)
	require.Equal(t, bundle.KindBody, out.Resources[0].Bundles[0].Kind)
	require.Empty(t, out.Errors)
}

func TestExecuteQueryAllExpandsCollectionChildrenAndRecordsParentRelations(t *testing.T) {
	conn := newFakeConnector()
	parent := res("widgets", "issues")
	children := []uri.ResourceURI{res("widgets", "issues", "1"), res("widgets", "issues", "2"), res("widgets", "issues", "3")}
	conn.collections[parent.String()] = &bundle.BundleCollection{
		URI:     uri.KnowledgeURI{Resource: parent, Suffix: &uri.Suffix{Kind: uri.KindCollection}},
		Results: children,
	}

	e := newTestExecutor(conn)
	actions := []Action{{
		Kind:        ActionLoad,
		LoadURI:     parent,
		LoadMode:    LoadAuto,
		ExpandDepth: 1,
		ExpandMode:  ExpandAuto,
		Observe:     []Observable{{Resource: parent, Suffix: &uri.Suffix{Kind: uri.KindCollection}}},
	}}

	out, err := e.ExecuteQueryAll(context.Background(), actions, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, out.Resources, 4, "parent plus its three collection children")

	var gotChildren int
	for _, rsc := range out.Resources {
		for _, c := range children {
			if rsc.URI == c {
				gotChildren++
			}
		}
	}
	require.Equal(t, 3, gotChildren)

	var parentRelations int
	for _, rel := range out.Relations {
		if rel.Kind == history.RelationParent {
			parentRelations++
		}
	}
	require.Equal(t, 3, parentRelations, "one Parent relation per distinct collection result, per S7")
}

func TestExecuteQueryAllReturnsResourceErrorForUnrecognisedRealm(t *testing.T) {
	conn := newFakeConnector()
	e := newTestExecutor(conn)

	unknown := uri.ResourceURI{Realm: "nope", Subrealm: "x", Path: []string{"1"}}
	actions := []Action{{Kind: ActionLoad, LoadURI: unknown, LoadMode: LoadAuto, Observe: []Observable{knowledgeBody(unknown)}}}

	out, err := e.ExecuteQueryAll(context.Background(), actions, QueryOptions{})
	require.NoError(t, err)
	require.Empty(t, out.Resources)
	require.Len(t, out.Errors, 1)
	require.Equal(t, unknown, out.Errors[0].Resource)
}

func TestExecuteQueryAllFailsClosedOnCancellation(t *testing.T) {
	conn := newFakeConnector()
	e := newTestExecutor(conn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := res("widgets", "1")
	actions := []Action{{Kind: ActionLoad, LoadURI: target, LoadMode: LoadAuto, Observe: []Observable{knowledgeBody(target)}}}

	out, err := e.ExecuteQueryAll(ctx, actions, QueryOptions{})
	require.Error(t, err)
	require.Empty(t, out.Resources, "no Resources bundle is emitted once cancellation is observed")
}

func TestExecuteQueryAllWritesAttachmentSynchronouslyWithoutAConnector(t *testing.T) {
	e := newTestExecutor(newFakeConnector())
	target := res("widgets", "1")

	actions := []Action{{
		Kind:              ActionAttachment,
		AttachmentURI:     target,
		AttachmentPayload: Attachment{Kind: AttachmentPlain, MimeType: "text/plain", Text: "a note"},
	}}

	_, err := e.ExecuteQueryAll(context.Background(), actions, QueryOptions{})
	require.NoError(t, err)

	h, err := e.history.Load(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, h.Deltas, 1)
	require.NotNil(t, h.Deltas[0].Observed[0].Plain)
	require.Equal(t, "a note", h.Deltas[0].Observed[0].Plain.Text)
}

func TestRequiredLabelsFiltersOutResourcesMissingTheLabel(t *testing.T) {
	r := &pendingResult{}
	require.True(t, satisfiesLabels(r, nil), "no required labels means everything passes")
	require.False(t, satisfiesLabels(r, []string{"bug"}), "a resource with no label at all fails a non-empty filter")
}

func TestDedupRelationsSortsAndDropsDuplicatesByUniqueID(t *testing.T) {
	a := history.NewRelation(history.RelationParent, "", res("p"), res("c1"))
	b := history.NewRelation(history.RelationParent, "", res("p"), res("c2"))
	dup := a

	out := dedupRelations([]history.Relation{b, a, dup})
	require.Len(t, out, 2)
	require.True(t, out[0].UniqueID < out[1].UniqueID)
}

func TestExecuteQueryAllHonoursTimeout(t *testing.T) {
	e := newTestExecutor(newFakeConnector())
	target := res("widgets", "1")
	actions := []Action{{Kind: ActionLoad, LoadURI: target, LoadMode: LoadAuto, Observe: []Observable{knowledgeBody(target)}}}

	_, err := e.ExecuteQueryAll(context.Background(), actions, QueryOptions{Timeout: time.Second})
	require.NoError(t, err, "a generous timeout must not interfere with a fast fake connector")
}
