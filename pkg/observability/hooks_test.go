package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	b := NoopBundleHooks{}
	b.OnBundleStart(ctx, 12)
	b.OnBundleComplete(ctx, BundleStats{Edges: 12, Pairs: 30, Iterations: 60}, time.Second, nil)
	b.OnCompatibilityFailure(ctx, 3, errors.New("boom"))

	p := NoopPipelineHooks{}
	p.OnParseStart(ctx, "json", "edges.json")
	p.OnParseComplete(ctx, "json", "edges.json", 100, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "result")
	c.OnCacheMiss(ctx, "result")
	c.OnCacheSet(ctx, "result", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/bundle")
	h.OnResponse(ctx, "POST", "/v1/bundle", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Bundle().(NoopBundleHooks); !ok {
		t.Error("Bundle() should return NoopBundleHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customBundle := &testBundleHooks{}
	SetBundleHooks(customBundle)
	if Bundle() != customBundle {
		t.Error("SetBundleHooks should set custom hooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Bundle().(NoopBundleHooks); !ok {
		t.Error("Reset() should restore NoopBundleHooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testBundleHooks{}
	SetBundleHooks(custom)
	SetBundleHooks(nil)

	if Bundle() != custom {
		t.Error("SetBundleHooks(nil) should be ignored")
	}
}

// Test implementations
type testBundleHooks struct{ NoopBundleHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
