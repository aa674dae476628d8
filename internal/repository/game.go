package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
)

const (
	gamesCollection = "games"
	movesCollection = "moves"
	queryTimeout    = 5 * time.Second
)

type moveDocument struct {
	GameID    string    `bson:"game_id"`
	Move      game.Move `bson:",inline"`
	CreatedAt time.Time `bson:"created_at"`
}

// GameRepository keeps game records and their move logs in MongoDB.
type GameRepository struct {
	log   *zap.SugaredLogger
	mongo *mongo.Database
}

func NewGameRepository(log *zap.SugaredLogger, mongo *mongo.Database) *GameRepository {
	return &GameRepository{
		log:   log,
		mongo: mongo,
	}
}

func (g *GameRepository) CreateGame(ctx context.Context, gameData game.Game) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := g.mongo.Collection(gamesCollection).InsertOne(ctx, gameData)
	if err != nil {
		g.log.Errorf("failed to insert game %s: %v", gameData.ID, err)
		return fmt.Errorf("insert game: %w", err)
	}

	g.log.Infof("game inserted successfully with id: %s", gameData.ID)
	return nil
}

// GetGame loads the record and its moves ordered by move number.
func (g *GameRepository) GetGame(ctx context.Context, gameID string) (game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var found game.Game
	err := g.mongo.Collection(gamesCollection).FindOne(ctx, bson.M{"_id": gameID}).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, errs.ErrGameNotFound
	} else if err != nil {
		g.log.Errorf("failed to load game %s: %v", gameID, err)
		return game.Game{}, fmt.Errorf("find game: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "move_number", Value: 1}})
	cursor, err := g.mongo.Collection(movesCollection).Find(ctx, bson.M{"game_id": gameID}, opts)
	if err != nil {
		return game.Game{}, fmt.Errorf("find moves: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []moveDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return game.Game{}, fmt.Errorf("decode moves: %w", err)
	}

	found.Moves = make([]game.Move, 0, len(docs))
	for _, d := range docs {
		found.Moves = append(found.Moves, d.Move)
	}
	return found, nil
}

func (g *GameRepository) AppendMove(ctx context.Context, gameID string, move game.Move) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	doc := moveDocument{
		GameID:    gameID,
		Move:      move,
		CreatedAt: time.Now(),
	}
	if _, err := g.mongo.Collection(movesCollection).InsertOne(ctx, doc); err != nil {
		g.log.Errorf("failed to insert move %d for game %s: %v", move.Number, gameID, err)
		return fmt.Errorf("insert move: %w", err)
	}
	return nil
}

// GetHistory returns the games of a player, newest first, with their moves
// attached in move number order.
func (g *GameRepository) GetHistory(ctx context.Context, playerID string, limit, offset int) ([]game.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"player_black": playerID},
		bson.M{"player_white": playerID},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := g.mongo.Collection(gamesCollection).Find(ctx, filter, opts)
	if err != nil {
		g.log.Errorf("failed to load history of %s: %v", playerID, err)
		return nil, fmt.Errorf("find games: %w", err)
	}
	var games []game.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("decode games: %w", err)
	}
	if len(games) == 0 {
		return games, nil
	}

	ids := make(bson.A, 0, len(games))
	for _, found := range games {
		ids = append(ids, found.ID)
	}
	movesOpts := options.Find().SetSort(bson.D{{Key: "game_id", Value: 1}, {Key: "move_number", Value: 1}})
	movesCursor, err := g.mongo.Collection(movesCollection).Find(ctx, bson.M{"game_id": bson.M{"$in": ids}}, movesOpts)
	if err != nil {
		return nil, fmt.Errorf("find moves: %w", err)
	}
	var docs []moveDocument
	if err := movesCursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode moves: %w", err)
	}

	byGame := make(map[string][]game.Move, len(games))
	for _, d := range docs {
		byGame[d.GameID] = append(byGame[d.GameID], d.Move)
	}
	for i := range games {
		games[i].Moves = byGame[games[i].ID]
		if games[i].Moves == nil {
			games[i].Moves = []game.Move{}
		}
	}
	return games, nil
}

// DeleteMove removes a single record from the log, used when a move is
// taken back.
func (g *GameRepository) DeleteMove(ctx context.Context, gameID string, moveNumber int) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := g.mongo.Collection(movesCollection).DeleteOne(ctx, bson.M{"game_id": gameID, "move_number": moveNumber})
	if err != nil {
		g.log.Errorf("failed to delete move %d for game %s: %v", moveNumber, gameID, err)
		return fmt.Errorf("delete move: %w", err)
	}
	if res.DeletedCount == 0 {
		g.log.Warnf("move %d for game %s was not stored", moveNumber, gameID)
	}
	return nil
}

// SaveSnapshot writes the board, scores and status. The winner color is
// also resolved to the id of the player holding it.
func (g *GameRepository) SaveSnapshot(ctx context.Context, gameID string, snap game.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	collection := g.mongo.Collection(gamesCollection)

	var players game.Game
	projection := options.FindOne().SetProjection(bson.M{"player_black": 1, "player_white": 1})
	err := collection.FindOne(ctx, bson.M{"_id": gameID}, projection).Decode(&players)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrGameNotFound
	} else if err != nil {
		return fmt.Errorf("find players: %w", err)
	}

	set := bson.M{
		"board":       snap.Board,
		"black_score": snap.BlackScore,
		"white_score": snap.WhiteScore,
		"status":      snap.Status,
		"winner":      snap.Winner,
		"winner_id":   players.WinnerPlayerID(snap.Winner),
	}
	if snap.Status == game.StatusFinished {
		set["finished_at"] = time.Now()
	}

	res, err := collection.UpdateOne(ctx, bson.M{"_id": gameID}, bson.M{"$set": set})
	if err != nil {
		g.log.Errorf("failed to save snapshot for game %s: %v", gameID, err)
		return fmt.Errorf("update game: %w", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrGameNotFound
	}
	return nil
}
