package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"permission-sync/internal/config"
	"permission-sync/internal/repository/model"
	"permission-sync/internal/repository/registrytypes"
)

const (
	databaseName = "permission-sync"

	playerCollectionName     = "players"
	rankCollectionName       = "ranks"
	grantCollectionName      = "grants"
	punishmentCollectionName = "punishments"
	counterCollectionName    = "counters"

	defaultTimeout = 5 * time.Second
)

type mongoRepository struct {
	database *mongo.Database
	timeout  time.Duration

	playerCollection     *mongo.Collection
	rankCollection       *mongo.Collection
	grantCollection      *mongo.Collection
	punishmentCollection *mongo.Collection
	counterCollection    *mongo.Collection
}

// usernameCollation makes username lookups case-insensitive.
var usernameCollation = &options.Collation{Locale: "en", Strength: 2}

func NewMongoRepository(ctx context.Context, logger *zap.SugaredLogger, wg *sync.WaitGroup, cfg config.MongoDBConfig) (Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetRegistry(createCodecRegistry()))
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	database := client.Database(databaseName)
	repo := &mongoRepository{
		database:             database,
		timeout:              timeout,
		playerCollection:     database.Collection(playerCollectionName),
		rankCollection:       database.Collection(rankCollectionName),
		grantCollection:      database.Collection(grantCollectionName),
		punishmentCollection: database.Collection(punishmentCollectionName),
		counterCollection:    database.Collection(counterCollectionName),
	}

	if err := repo.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Errorw("failed to disconnect from mongo", "error", err)
		}
	}()

	return repo, nil
}

func (m *mongoRepository) createIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.playerCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetCollation(usernameCollation),
	})
	if err != nil {
		return err
	}

	_, err = m.grantCollection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "playerId", Value: 1}}})
	if err != nil {
		return err
	}

	_, err = m.punishmentCollection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "playerId", Value: 1}}})
	return err
}

func (m *mongoRepository) GetPlayer(ctx context.Context, playerId uuid.UUID) (*model.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var player model.Player
	if err := m.playerCollection.FindOne(ctx, bson.M{"_id": playerId}).Decode(&player); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &player, nil
}

func (m *mongoRepository) GetPlayerByUsername(ctx context.Context, username string) (*model.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var player model.Player
	err := m.playerCollection.FindOne(ctx, bson.M{"username": username}, options.FindOne().SetCollation(usernameCollation)).
		Decode(&player)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &player, nil
}

func (m *mongoRepository) SavePlayer(ctx context.Context, player *model.Player) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.playerCollection.ReplaceOne(ctx, bson.M{"_id": player.Id}, player, options.Replace().SetUpsert(true))
	return err
}

func (m *mongoRepository) SetOnline(ctx context.Context, playerId uuid.UUID, online bool) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.playerCollection.UpdateByID(ctx, playerId, bson.M{"$set": bson.M{
		"online":    online,
		"lastLogin": time.Now().UTC(),
	}})
	return err
}

func (m *mongoRepository) AddPlaytime(ctx context.Context, playerId uuid.UUID, ticks int64) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.playerCollection.UpdateByID(ctx, playerId, bson.M{"$inc": bson.M{"playtimeTicks": ticks}})
	return err
}

func (m *mongoRepository) DeletePlayer(ctx context.Context, playerId uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.playerCollection.DeleteOne(ctx, bson.M{"_id": playerId})
	return err
}

func (m *mongoRepository) GetAllRanks(ctx context.Context) ([]*model.Rank, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cursor, err := m.rankCollection.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var ranks []*model.Rank
	if err := cursor.All(ctx, &ranks); err != nil {
		return nil, err
	}
	return ranks, nil
}

func (m *mongoRepository) GetRank(ctx context.Context, rankId string) (*model.Rank, error) {
	return m.findRank(ctx, bson.M{"_id": rankId})
}

func (m *mongoRepository) GetDefaultRank(ctx context.Context) (*model.Rank, error) {
	return m.findRank(ctx, bson.M{"isDefault": true})
}

func (m *mongoRepository) findRank(ctx context.Context, filter bson.M) (*model.Rank, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var rank model.Rank
	if err := m.rankCollection.FindOne(ctx, filter).Decode(&rank); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rank, nil
}

func (m *mongoRepository) SaveRank(ctx context.Context, rank *model.Rank) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.rankCollection.ReplaceOne(ctx, bson.M{"_id": rank.Id}, rank, options.Replace().SetUpsert(true))
	return err
}

func (m *mongoRepository) DeleteRank(ctx context.Context, rankId string) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.rankCollection.DeleteOne(ctx, bson.M{"_id": rankId})
	return err
}

func (m *mongoRepository) GetGrant(ctx context.Context, grantId int64) (*model.Grant, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var grant model.Grant
	if err := m.grantCollection.FindOne(ctx, bson.M{"_id": grantId}).Decode(&grant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

func (m *mongoRepository) GetActiveGrants(ctx context.Context, playerId uuid.UUID) ([]*model.Grant, error) {
	return m.findGrants(ctx, bson.M{
		"playerId": playerId,
		"active":   true,
		"$or": bson.A{
			bson.M{"expiresAt": nil},
			bson.M{"expiresAt": bson.M{"$gt": time.Now().UTC()}},
		},
	})
}

func (m *mongoRepository) GetGrants(ctx context.Context, playerId uuid.UUID) ([]*model.Grant, error) {
	return m.findGrants(ctx, bson.M{"playerId": playerId})
}

// findGrants returns grants in insertion order, which the resolver relies on.
func (m *mongoRepository) findGrants(ctx context.Context, filter bson.M) ([]*model.Grant, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cursor, err := m.grantCollection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	grants := make([]*model.Grant, 0)
	if err := cursor.All(ctx, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

func (m *mongoRepository) SaveGrant(ctx context.Context, grant *model.Grant) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if grant.Id == 0 {
		id, err := m.nextId(ctx, grantCollectionName)
		if err != nil {
			return err
		}
		grant.Id = id
	}

	_, err := m.grantCollection.ReplaceOne(ctx, bson.M{"_id": grant.Id}, grant, options.Replace().SetUpsert(true))
	return err
}

func (m *mongoRepository) SetGrantActive(ctx context.Context, grantId int64, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.grantCollection.UpdateByID(ctx, grantId, bson.M{"$set": bson.M{"active": active}})
	return err
}

func (m *mongoRepository) DeleteGrant(ctx context.Context, grantId int64) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.grantCollection.DeleteOne(ctx, bson.M{"_id": grantId})
	return err
}

func (m *mongoRepository) CleanupExpiredGrants(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	result, err := m.grantCollection.UpdateMany(ctx,
		bson.M{"active": true, "expiresAt": bson.M{"$lte": time.Now().UTC()}},
		bson.M{"$set": bson.M{"active": false}},
	)
	if err != nil {
		return 0, err
	}
	return int(result.ModifiedCount), nil
}

func (m *mongoRepository) GetActivePunishments(ctx context.Context, playerId uuid.UUID) ([]*model.Punishment, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	filter := bson.M{
		"playerId": playerId,
		"active":   true,
		"$or": bson.A{
			bson.M{"expiresAt": nil},
			bson.M{"expiresAt": bson.M{"$gt": time.Now().UTC()}},
		},
	}
	cursor, err := m.punishmentCollection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	punishments := make([]*model.Punishment, 0)
	if err := cursor.All(ctx, &punishments); err != nil {
		return nil, err
	}
	return punishments, nil
}

func (m *mongoRepository) SavePunishment(ctx context.Context, punishment *model.Punishment) (*model.Punishment, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	saved := *punishment
	if saved.Id == 0 {
		id, err := m.nextId(ctx, punishmentCollectionName)
		if err != nil {
			return nil, err
		}
		saved.Id = id
	}

	_, err := m.punishmentCollection.ReplaceOne(ctx, bson.M{"_id": saved.Id}, &saved, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (m *mongoRepository) ExecutePunishment(ctx context.Context, punishmentId int64) (*model.ExecuteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var punishment model.Punishment
	err := m.punishmentCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": punishmentId},
		bson.M{"$set": bson.M{"executed": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&punishment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.ExecuteResult{Success: false, Message: "punishment not found"}, nil
		}
		return nil, err
	}

	return &model.ExecuteResult{
		Success: true,
		Message: fmt.Sprintf("%s executed", punishment.Type),
		Kicked:  punishment.Type.DisconnectsPlayer(),
	}, nil
}

// nextId allocates a sequential numeric id for the given collection.
func (m *mongoRepository) nextId(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.counterCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}
	return counter.Seq, nil
}

func createCodecRegistry() *bsoncodec.Registry {
	registry := bson.NewRegistry()
	registry.RegisterTypeEncoder(registrytypes.UUIDType, bsoncodec.ValueEncoderFunc(registrytypes.UuidEncodeValue))
	registry.RegisterTypeDecoder(registrytypes.UUIDType, bsoncodec.ValueDecoderFunc(registrytypes.UuidDecodeValue))
	return registry
}
