package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRankingHooks{}
	r.OnRecomputeStart("ranking", 100)
	r.OnRecomputeComplete("ranking", 42, time.Millisecond)

	s := NoopStatsHooks{}
	s.OnStatsComputed(ctx, "col1", 42, time.Millisecond)
	s.OnStatsDiscarded(ctx, "col1", 1, 2)

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "data.csv")
	p.OnLoadComplete(ctx, "data.csv", 100, time.Second, nil)
	p.OnRenderStart(ctx, "table")
	p.OnRenderComplete(ctx, "table", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "order")
	c.OnCacheMiss(ctx, "stats")
	c.OnCacheSet(ctx, "order", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Ranking().(NoopRankingHooks); !ok {
		t.Error("Ranking() should return NoopRankingHooks by default")
	}
	if _, ok := Stats().(NoopStatsHooks); !ok {
		t.Error("Stats() should return NoopStatsHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customRanking := &testRankingHooks{}
	SetRankingHooks(customRanking)
	if Ranking() != customRanking {
		t.Error("SetRankingHooks should set custom hooks")
	}

	customStats := &testStatsHooks{}
	SetStatsHooks(customStats)
	if Stats() != customStats {
		t.Error("SetStatsHooks should set custom hooks")
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

	Reset()
	if _, ok := Ranking().(NoopRankingHooks); !ok {
		t.Error("Reset() should restore NoopRankingHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testRankingHooks{}
	SetRankingHooks(custom)
	SetRankingHooks(nil)

	if Ranking() != custom {
		t.Error("SetRankingHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testRankingHooks struct{ NoopRankingHooks }
type testStatsHooks struct{ NoopStatsHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
