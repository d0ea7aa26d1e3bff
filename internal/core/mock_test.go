package core

import (
	"context"
	"sync/atomic"

	"github.com/dvsite/interactome/internal/core/model"
	"github.com/dvsite/interactome/internal/stringdb"
)

type mockRemote struct {
	MappingRows []stringdb.MappingRow
	Edges       []model.InteractionEdge
	MapErr      error
	NetErr      error
	mapCalls    int64
	netCalls    int64
}

func (m *mockRemote) MapIdentifiers(_ context.Context, _ []string, _ int) ([]stringdb.MappingRow, error) {
	atomic.AddInt64(&m.mapCalls, 1)
	if m.MapErr != nil {
		return nil, m.MapErr
	}
	return m.MappingRows, nil
}

func (m *mockRemote) FetchInteractions(_ context.Context, _ []string, _ int, _ model.NetworkType, _ int) ([]model.InteractionEdge, error) {
	atomic.AddInt64(&m.netCalls, 1)
	if m.NetErr != nil {
		return nil, m.NetErr
	}
	return m.Edges, nil
}

func (m *mockRemote) MapCalls() int64 { return atomic.LoadInt64(&m.mapCalls) }
func (m *mockRemote) NetCalls() int64 { return atomic.LoadInt64(&m.netCalls) }
