package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tempo/internal/eventlog"
	"tempo/internal/snapshot"
	snapshotmocks "tempo/internal/snapshot/mocks"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/platform/sentinel"
)

// counterState is a minimal aggregate: created once, then bumped. Its fold is
// deterministic so replay equality checks are meaningful.
type counterState struct {
	Stat  Status `json:"status"`
	Bumps int    `json:"bumps"`
}

func (s *counterState) AggregateType() eventlog.AggregateType { return eventlog.AggregateWorkLogEntry }
func (s *counterState) Status() Status                        { return s.Stat }

func (s *counterState) Apply(event eventlog.Event) error {
	switch event.Type {
	case "counter_created":
		s.Stat = StatusDraft
	case "counter_bumped":
		s.Bumps++
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
	return nil
}

func newCounterState() State { return &counterState{} }

// flakyStore injects version conflicts before delegating to the real store.
type flakyStore struct {
	*eventlog.InMemory
	conflicts int
}

func (s *flakyStore) Append(ctx context.Context, aggregateID string, aggregateType eventlog.AggregateType, expectedVersion int64, events []eventlog.Event) (int64, error) {
	if s.conflicts > 0 {
		s.conflicts--
		return 0, sentinel.ErrVersionConflict
	}
	return s.InMemory.Append(ctx, aggregateID, aggregateType, expectedVersion, events)
}

type EngineSuite struct {
	suite.Suite
	events *eventlog.InMemory
	ctx    context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.events = eventlog.NewInMemory()
	s.ctx = context.Background()
}

func (s *EngineSuite) mustEvent(eventType eventlog.EventType) eventlog.Event {
	event, err := eventlog.NewEvent("", eventlog.AggregateWorkLogEntry, eventType, time.Now().UTC(), nil)
	s.Require().NoError(err)
	return event
}

func (s *EngineSuite) createCounter(engine *Engine, aggregateID string) {
	_, err := engine.Execute(s.ctx, aggregateID, newCounterState, false, func(state State, version int64) ([]eventlog.Event, error) {
		return []eventlog.Event{s.mustEvent("counter_created")}, nil
	})
	s.Require().NoError(err)
}

func (s *EngineSuite) bump(engine *Engine, aggregateID string) (int64, error) {
	return engine.Execute(s.ctx, aggregateID, newCounterState, true, func(state State, version int64) ([]eventlog.Event, error) {
		return []eventlog.Event{s.mustEvent("counter_bumped")}, nil
	})
}

func (s *EngineSuite) TestExecute() {
	s.Run("creation command starts a stream", func() {
		engine := NewEngine(s.events, nil)
		aggregateID := uuid.NewString()
		s.createCounter(engine, aggregateID)

		version, err := s.events.StreamVersion(s.ctx, aggregateID)
		s.Require().NoError(err)
		s.Equal(int64(1), version)
	})

	s.Run("mutation on a fresh stream is not found", func() {
		engine := NewEngine(s.events, nil)
		_, err := s.bump(engine, uuid.NewString())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("no events from decide is a no-op at the current version", func() {
		engine := NewEngine(s.events, nil)
		aggregateID := uuid.NewString()
		s.createCounter(engine, aggregateID)

		version, err := engine.Execute(s.ctx, aggregateID, newCounterState, true, func(State, int64) ([]eventlog.Event, error) {
			return nil, nil
		})
		s.Require().NoError(err)
		s.Equal(int64(1), version)
	})

	s.Run("decide errors pass through unwrapped", func() {
		engine := NewEngine(s.events, nil)
		aggregateID := uuid.NewString()
		s.createCounter(engine, aggregateID)

		_, err := engine.Execute(s.ctx, aggregateID, newCounterState, true, func(State, int64) ([]eventlog.Event, error) {
			return nil, dErrors.New(dErrors.CodeNotEditable, "read-only")
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotEditable))
	})
}

func (s *EngineSuite) TestExecute_RetriesConflicts() {
	s.Run("recovers within the retry budget", func() {
		store := &flakyStore{InMemory: s.events, conflicts: 2}
		engine := NewEngine(store, nil, WithRetries(3))
		aggregateID := uuid.NewString()
		s.createCounter(engine, aggregateID)

		version, err := s.events.StreamVersion(s.ctx, aggregateID)
		s.Require().NoError(err)
		s.Equal(int64(1), version)
	})

	s.Run("surfaces conflict once retries are exhausted", func() {
		store := &flakyStore{InMemory: s.events, conflicts: 10}
		engine := NewEngine(store, nil, WithRetries(2))

		_, err := engine.Execute(s.ctx, uuid.NewString(), newCounterState, false, func(State, int64) ([]eventlog.Event, error) {
			return []eventlog.Event{s.mustEvent("counter_created")}, nil
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *EngineSuite) TestRehydrate() {
	s.Run("replay is deterministic", func() {
		engine := NewEngine(s.events, nil)
		aggregateID := uuid.NewString()
		s.createCounter(engine, aggregateID)
		for range 3 {
			_, err := s.bump(engine, aggregateID)
			s.Require().NoError(err)
		}

		first := &counterState{}
		version, err := engine.Rehydrate(s.ctx, aggregateID, first)
		s.Require().NoError(err)
		s.Equal(int64(4), version)

		second := &counterState{}
		_, err = engine.Rehydrate(s.ctx, aggregateID, second)
		s.Require().NoError(err)
		s.Equal(first, second)
		s.Equal(3, second.Bumps)
	})

	s.Run("starts from a snapshot when one exists", func() {
		ctrl := gomock.NewController(s.T())
		snapshots := snapshotmocks.NewMockStore(ctrl)
		aggregateID := uuid.NewString()
		s.createCounter(NewEngine(s.events, nil), aggregateID)
		engine := NewEngine(s.events, snapshots)

		body, err := json.Marshal(&counterState{Stat: StatusDraft, Bumps: 40})
		s.Require().NoError(err)
		snapshots.EXPECT().LoadLatest(gomock.Any(), aggregateID).
			Return(snapshot.Snapshot{AggregateID: aggregateID, Version: 1, State: body}, nil)

		state := &counterState{}
		version, err := engine.Rehydrate(s.ctx, aggregateID, state)
		s.Require().NoError(err)
		s.Equal(int64(1), version)
		s.Equal(40, state.Bumps)
	})

	s.Run("corrupt snapshot falls back to full replay", func() {
		ctrl := gomock.NewController(s.T())
		snapshots := snapshotmocks.NewMockStore(ctrl)
		aggregateID := uuid.NewString()
		s.createCounter(NewEngine(s.events, nil), aggregateID)
		engine := NewEngine(s.events, snapshots)

		snapshots.EXPECT().LoadLatest(gomock.Any(), aggregateID).
			Return(snapshot.Snapshot{AggregateID: aggregateID, Version: 1, State: []byte("{not json")}, nil)

		state := &counterState{}
		version, err := engine.Rehydrate(s.ctx, aggregateID, state)
		s.Require().NoError(err)
		s.Equal(int64(1), version)
		s.Equal(StatusDraft, state.Stat)
	})

	s.Run("snapshot store failure never fails the read", func() {
		ctrl := gomock.NewController(s.T())
		snapshots := snapshotmocks.NewMockStore(ctrl)
		aggregateID := uuid.NewString()
		s.createCounter(NewEngine(s.events, nil), aggregateID)
		engine := NewEngine(s.events, snapshots)

		snapshots.EXPECT().LoadLatest(gomock.Any(), aggregateID).
			Return(snapshot.Snapshot{}, fmt.Errorf("redis is down"))

		state := &counterState{}
		version, err := engine.Rehydrate(s.ctx, aggregateID, state)
		s.Require().NoError(err)
		s.Equal(int64(1), version)
	})
}

func (s *EngineSuite) TestSnapshotThreshold() {
	ctrl := gomock.NewController(s.T())
	snapshots := snapshotmocks.NewMockStore(ctrl)
	engine := NewEngine(s.events, snapshots, WithSnapshotEvery(2))
	aggregateID := uuid.NewString()

	saved := make(chan int64, 1)
	snapshots.EXPECT().LoadLatest(gomock.Any(), aggregateID).
		Return(snapshot.Snapshot{}, sentinel.ErrNotFound).AnyTimes()
	snapshots.EXPECT().Save(gomock.Any(), aggregateID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, version int64, state json.RawMessage) error {
			var folded counterState
			s.NoError(json.Unmarshal(state, &folded))
			s.Equal(1, folded.Bumps)
			saved <- version
			return nil
		})

	s.createCounter(engine, aggregateID)
	_, err := s.bump(engine, aggregateID)
	s.Require().NoError(err)

	select {
	case version := <-saved:
		s.Equal(int64(2), version)
	case <-time.After(2 * time.Second):
		s.Fail("snapshot save was not triggered")
	}
}
