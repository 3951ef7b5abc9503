package opponenthandlers

import (
	"context"

	opponentservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/opponent/application"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	ListOpponentsFunc  func(ctx context.Context) ([]sharedtypes.Opponent, error)
	GetOpponentFunc    func(ctx context.Context, id string) (*sharedtypes.Opponent, error)
	CreateOpponentFunc func(ctx context.Context, req opponentservice.OpponentRequest) (*sharedtypes.Opponent, error)
	UpdateOpponentFunc func(ctx context.Context, id string, req opponentservice.OpponentRequest) (*sharedtypes.Opponent, error)
	DeleteOpponentFunc func(ctx context.Context, id string) error
	OpponentStatsFunc  func(ctx context.Context, id string) (*opponentservice.Stats, error)
	CreateGameFunc     func(ctx context.Context, opponentID string, req opponentservice.CreateGameRequest) (*opponentservice.GameView, error)
	GetGameFunc        func(ctx context.Context, opponentID, gameID string) (*opponentservice.GameView, error)
	DeleteGameFunc     func(ctx context.Context, opponentID, gameID string) error
	AddRoundFunc       func(ctx context.Context, opponentID, gameID string, in opponentservice.RoundInput) (*opponentservice.GameView, error)
	EditRoundFunc      func(ctx context.Context, opponentID, gameID string, index int, in opponentservice.RoundInput) (*opponentservice.GameView, error)
	SetKnockValueFunc  func(ctx context.Context, opponentID, gameID string, value *int) (*opponentservice.GameView, error)
}

func (f *FakeService) ListOpponents(ctx context.Context) ([]sharedtypes.Opponent, error) {
	if f.ListOpponentsFunc != nil {
		return f.ListOpponentsFunc(ctx)
	}
	return []sharedtypes.Opponent{}, nil
}

func (f *FakeService) GetOpponent(ctx context.Context, id string) (*sharedtypes.Opponent, error) {
	if f.GetOpponentFunc != nil {
		return f.GetOpponentFunc(ctx, id)
	}
	return &sharedtypes.Opponent{ID: id}, nil
}

func (f *FakeService) CreateOpponent(ctx context.Context, req opponentservice.OpponentRequest) (*sharedtypes.Opponent, error) {
	if f.CreateOpponentFunc != nil {
		return f.CreateOpponentFunc(ctx, req)
	}
	return &sharedtypes.Opponent{ID: "new", Name: req.Name, Color: req.Color}, nil
}

func (f *FakeService) UpdateOpponent(ctx context.Context, id string, req opponentservice.OpponentRequest) (*sharedtypes.Opponent, error) {
	if f.UpdateOpponentFunc != nil {
		return f.UpdateOpponentFunc(ctx, id, req)
	}
	return &sharedtypes.Opponent{ID: id, Name: req.Name, Color: req.Color}, nil
}

func (f *FakeService) DeleteOpponent(ctx context.Context, id string) error {
	if f.DeleteOpponentFunc != nil {
		return f.DeleteOpponentFunc(ctx, id)
	}
	return nil
}

func (f *FakeService) OpponentStats(ctx context.Context, id string) (*opponentservice.Stats, error) {
	if f.OpponentStatsFunc != nil {
		return f.OpponentStatsFunc(ctx, id)
	}
	return &opponentservice.Stats{OpponentID: id}, nil
}

func (f *FakeService) CreateGame(ctx context.Context, opponentID string, req opponentservice.CreateGameRequest) (*opponentservice.GameView, error) {
	if f.CreateGameFunc != nil {
		return f.CreateGameFunc(ctx, opponentID, req)
	}
	return &opponentservice.GameView{OpponentID: opponentID}, nil
}

func (f *FakeService) GetGame(ctx context.Context, opponentID, gameID string) (*opponentservice.GameView, error) {
	if f.GetGameFunc != nil {
		return f.GetGameFunc(ctx, opponentID, gameID)
	}
	return &opponentservice.GameView{OpponentID: opponentID, Game: sharedtypes.Game{ID: gameID}}, nil
}

func (f *FakeService) DeleteGame(ctx context.Context, opponentID, gameID string) error {
	if f.DeleteGameFunc != nil {
		return f.DeleteGameFunc(ctx, opponentID, gameID)
	}
	return nil
}

func (f *FakeService) AddRound(ctx context.Context, opponentID, gameID string, in opponentservice.RoundInput) (*opponentservice.GameView, error) {
	if f.AddRoundFunc != nil {
		return f.AddRoundFunc(ctx, opponentID, gameID, in)
	}
	return &opponentservice.GameView{OpponentID: opponentID, Game: sharedtypes.Game{ID: gameID}}, nil
}

func (f *FakeService) EditRound(ctx context.Context, opponentID, gameID string, index int, in opponentservice.RoundInput) (*opponentservice.GameView, error) {
	if f.EditRoundFunc != nil {
		return f.EditRoundFunc(ctx, opponentID, gameID, index, in)
	}
	return &opponentservice.GameView{OpponentID: opponentID, Game: sharedtypes.Game{ID: gameID}}, nil
}

func (f *FakeService) SetKnockValue(ctx context.Context, opponentID, gameID string, value *int) (*opponentservice.GameView, error) {
	if f.SetKnockValueFunc != nil {
		return f.SetKnockValueFunc(ctx, opponentID, gameID, value)
	}
	return &opponentservice.GameView{OpponentID: opponentID, Game: sharedtypes.Game{ID: gameID, KnockValue: value}}, nil
}

var _ opponentservice.Service = (*FakeService)(nil)
