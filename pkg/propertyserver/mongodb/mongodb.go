// Package mongodb is a property server stored in MongoDB.
//
// Documents are kept in three collections: assets, elements and counters. Element
// ordinals are allocated from counters with an atomic $inc so that concurrent
// writers append in a well-defined order.
package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
)

// Name is the registered backend name.
const Name = "mongodb"

// DefaultDatabase is used when the configuration names none.
const DefaultDatabase = "ocf"

func init() {
	propertyserver.Register(propertyserver.Info{
		Name:         Name,
		Description:  "MongoDB property server",
		Capabilities: []string{"read", "write"},
	}, func(ctx context.Context, cfg *config.Config, log *zap.Logger) (propertyserver.PropertyServer, error) {
		return New(ctx, cfg.PropertyServer, log)
	})
}

type assetDocument struct {
	GUID string `bson:"_id"`
	Body string `bson:"body"`
}

type elementDocument struct {
	OwnerGUID string `bson:"owner_guid"`
	Kind      string `bson:"kind"`
	Ordinal   int64  `bson:"ordinal"`
	Body      string `bson:"body"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// Server reads metadata from MongoDB.
type Server struct {
	client   *mongo.Client
	assets   *mongo.Collection
	elements *mongo.Collection
	counters *mongo.Collection
	timeout  time.Duration
	logger   *zap.Logger
}

var _ propertyserver.ReadWriter = (*Server)(nil)

// New connects to the MongoDB deployment at cfg.DSN.
func New(ctx context.Context, cfg config.PropertyServerConfig, log *zap.Logger) (*Server, error) {
	if cfg.DSN == "" {
		return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "dsn is required").WithDetail("backend", Name)
	}
	if log == nil {
		log = zap.NewNop()
	}

	clientOpts := options.Client().ApplyURI(cfg.DSN)
	if cfg.Timeout > 0 {
		clientOpts.SetTimeout(cfg.Timeout)
	}
	if err := clientOpts.Validate(); err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "invalid mongodb options")
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "failed to connect to MongoDB")
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = DefaultDatabase
	}
	db := client.Database(dbName)

	s := &Server{
		client:   client,
		assets:   db.Collection("assets"),
		elements: db.Collection("elements"),
		counters: db.Collection("counters"),
		timeout:  cfg.Timeout,
		logger:   log.With(zap.String("component", "mongodb_property_server")),
	}
	if err := s.Health(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	s.logger.Info("MongoDB property server connected", zap.String("database", dbName))
	return s, nil
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// EnsureIndexes creates the collection index used for paging.
func (s *Server) EnsureIndexes(ctx context.Context) error {
	_, err := s.elements.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "owner_guid", Value: 1},
			{Key: "kind", Value: 1},
			{Key: "ordinal", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("owner_kind_ordinal"),
	})
	if err != nil {
		return classify(err, "failed to create indexes")
	}
	return nil
}

// Truncate removes every asset and element.
func (s *Server) Truncate(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.assets, s.elements, s.counters} {
		if _, err := c.DeleteMany(ctx, bson.D{}); err != nil {
			return classify(err, "failed to truncate "+c.Name())
		}
	}
	return nil
}

// PutAsset implements propertyserver.Store.
func (s *Server) PutAsset(ctx context.Context, asset *beans.Asset) error {
	if asset == nil {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "asset is required")
	}
	if err := propertyserver.ValidateGUID("asset_guid", asset.GUID); err != nil {
		return err
	}
	body, err := json.Marshal(asset)
	if err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to encode asset")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.assets.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: asset.GUID}},
		assetDocument{GUID: asset.GUID, Body: string(body)},
		options.Replace().SetUpsert(true))
	if err != nil {
		return classify(err, "failed to store asset")
	}
	return nil
}

// AddElement implements propertyserver.Store.
func (s *Server) AddElement(ctx context.Context, ownerGUID string, kind beans.Kind, element propertyserver.RawElement) error {
	if err := propertyserver.ValidateCollection(ownerGUID, kind); err != nil {
		return err
	}
	if !json.Valid(element) {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "element is not valid JSON")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var counter counterDocument
	err := s.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: ownerGUID + "/" + string(kind)}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return classify(err, "failed to allocate ordinal")
	}

	_, err = s.elements.InsertOne(ctx, elementDocument{
		OwnerGUID: ownerGUID,
		Kind:      string(kind),
		Ordinal:   counter.Seq - 1,
		Body:      string(element),
	})
	if err != nil {
		return classify(err, "failed to store element")
	}
	return nil
}

// GetAsset implements propertyserver.PropertyServer.
func (s *Server) GetAsset(ctx context.Context, assetGUID string) (*beans.Asset, error) {
	if err := propertyserver.ValidateGUID("asset_guid", assetGUID); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var doc assetDocument
	err := s.assets.FindOne(ctx, bson.D{{Key: "_id", Value: assetGUID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, propertyserver.AssetNotFound(assetGUID)
	}
	if err != nil {
		return nil, classify(err, "failed to read asset")
	}

	var asset beans.Asset
	if err := json.Unmarshal([]byte(doc.Body), &asset); err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to decode asset").
			WithDetail("asset_guid", assetGUID)
	}
	return &asset, nil
}

func collectionFilter(ownerGUID string, kind beans.Kind) bson.D {
	return bson.D{
		{Key: "owner_guid", Value: ownerGUID},
		{Key: "kind", Value: string(kind)},
	}
}

// CountElements implements propertyserver.PropertyServer.
func (s *Server) CountElements(ctx context.Context, ownerGUID string, kind beans.Kind) (int, error) {
	if err := propertyserver.ValidateCollection(ownerGUID, kind); err != nil {
		return 0, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.elements.CountDocuments(ctx, collectionFilter(ownerGUID, kind))
	if err != nil {
		return 0, classify(err, "failed to count elements")
	}
	return int(n), nil
}

// FetchElements implements propertyserver.PropertyServer.
func (s *Server) FetchElements(ctx context.Context, ownerGUID string, kind beans.Kind, startFrom, pageSize int) ([]propertyserver.RawElement, error) {
	if err := propertyserver.ValidatePage(ownerGUID, kind, startFrom, pageSize); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "ordinal", Value: 1}}).
		SetSkip(int64(startFrom)).
		SetLimit(int64(pageSize)).
		SetProjection(bson.D{{Key: "body", Value: 1}})

	cursor, err := s.elements.Find(ctx, collectionFilter(ownerGUID, kind), opts)
	if err != nil {
		return nil, classify(err, "failed to query elements")
	}
	defer cursor.Close(ctx)

	page := make([]propertyserver.RawElement, 0, pageSize)
	for cursor.Next(ctx) {
		var doc elementDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to decode element document")
		}
		page = append(page, propertyserver.RawElement(doc.Body))
	}
	if err := cursor.Err(); err != nil {
		return nil, classify(err, "failed to read elements")
	}
	return page, nil
}

// Health implements propertyserver.PropertyServer.
func (s *Server) Health(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return classify(err, "mongodb ping failed")
	}
	return nil
}

// Close implements propertyserver.PropertyServer.
func (s *Server) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "failed to disconnect from MongoDB")
	}
	return nil
}

func classify(err error, msg string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), mongo.IsTimeout(err):
		return ocferrors.Wrap(err, ocferrors.ErrorTypeTimeout, msg)
	case mongo.IsDuplicateKeyError(err):
		return ocferrors.Wrap(err, ocferrors.ErrorTypeData, msg)
	default:
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, msg)
	}
}
