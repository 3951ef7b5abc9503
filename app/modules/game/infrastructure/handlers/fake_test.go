package gamehandlers

import (
	"context"

	gameservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/application"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	CreateGameFunc   func(ctx context.Context, req gameservice.CreateGameRequest) (*gameservice.GameView, error)
	ListGamesFunc    func(ctx context.Context, since string) ([]gameservice.GameSummary, error)
	GetGameFunc      func(ctx context.Context, id string) (*gameservice.GameView, error)
	AddRoundFunc     func(ctx context.Context, id string, in gameservice.RoundInput) (*gameservice.GameView, error)
	EditRoundFunc    func(ctx context.Context, id string, index int, in gameservice.RoundInput) (*gameservice.GameView, error)
	ImportRoundsFunc func(ctx context.Context, id, fileName string, data []byte) (*gameservice.ImportResult, error)
	DeleteGameFunc   func(ctx context.Context, id string) error
}

func (f *FakeService) CreateGame(ctx context.Context, req gameservice.CreateGameRequest) (*gameservice.GameView, error) {
	if f.CreateGameFunc != nil {
		return f.CreateGameFunc(ctx, req)
	}
	return &gameservice.GameView{MultiplayerGame: sharedtypes.MultiplayerGame{ID: "new"}}, nil
}

func (f *FakeService) ListGames(ctx context.Context, since string) ([]gameservice.GameSummary, error) {
	if f.ListGamesFunc != nil {
		return f.ListGamesFunc(ctx, since)
	}
	return []gameservice.GameSummary{}, nil
}

func (f *FakeService) GetGame(ctx context.Context, id string) (*gameservice.GameView, error) {
	if f.GetGameFunc != nil {
		return f.GetGameFunc(ctx, id)
	}
	return &gameservice.GameView{MultiplayerGame: sharedtypes.MultiplayerGame{ID: id}}, nil
}

func (f *FakeService) AddRound(ctx context.Context, id string, in gameservice.RoundInput) (*gameservice.GameView, error) {
	if f.AddRoundFunc != nil {
		return f.AddRoundFunc(ctx, id, in)
	}
	return &gameservice.GameView{MultiplayerGame: sharedtypes.MultiplayerGame{ID: id}}, nil
}

func (f *FakeService) EditRound(ctx context.Context, id string, index int, in gameservice.RoundInput) (*gameservice.GameView, error) {
	if f.EditRoundFunc != nil {
		return f.EditRoundFunc(ctx, id, index, in)
	}
	return &gameservice.GameView{MultiplayerGame: sharedtypes.MultiplayerGame{ID: id}}, nil
}

func (f *FakeService) ImportRounds(ctx context.Context, id, fileName string, data []byte) (*gameservice.ImportResult, error) {
	if f.ImportRoundsFunc != nil {
		return f.ImportRoundsFunc(ctx, id, fileName, data)
	}
	return &gameservice.ImportResult{Game: &gameservice.GameView{}}, nil
}

func (f *FakeService) DeleteGame(ctx context.Context, id string) error {
	if f.DeleteGameFunc != nil {
		return f.DeleteGameFunc(ctx, id)
	}
	return nil
}

var _ gameservice.Service = (*FakeService)(nil)
