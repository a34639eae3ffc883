package manifest

import (
  "context"
  "errors"
  "fmt"
  "strings"

  "github.com/go-playground/validator/v10"
  "github.com/seatradar/seatradar/internal/models"
  "go.mongodb.org/mongo-driver/bson"
  "go.mongodb.org/mongo-driver/mongo"
  "go.mongodb.org/mongo-driver/mongo/options"
)

const (
  mongodbDatabase   = "seatradar"
  mongodbCollection = "manifests"
  mongodbDocumentId = "tracked_sections"
)

type MongodbConfig struct {
  Host           string `validate:"required"`
  Port           string `validate:"required"`
  Authentication *MongodbAuthentication
}

type MongodbAuthentication struct {
  User     string `validate:"required"`
  Password string `validate:"required"`
}

func (c *MongodbConfig) Validate() error {
  return validator.New().Struct(c)
}

func (c *MongodbConfig) ConnectionString() string {
  sb := strings.Builder{}

  sb.WriteString("mongodb://")

  if c.Authentication != nil {
    sb.WriteString(c.Authentication.User)
    sb.WriteString(":")
    sb.WriteString(c.Authentication.Password)
    sb.WriteString("@")
  }

  sb.WriteString(c.Host)
  sb.WriteString(":")
  sb.WriteString(c.Port)

  return sb.String()
}

// MongodbStore keeps the manifest as a single document, for
// deployments where the bot host has no durable filesystem.
type MongodbStore struct {
  client *mongo.Client
}

func NewMongodbStore(ctx context.Context, config MongodbConfig) (*MongodbStore, error) {
  if err := config.Validate(); err != nil {
    return nil, fmt.Errorf("invalid config: %w", err)
  }

  opts := options.
    Client().
    ApplyURI(config.ConnectionString())

  client, err := mongo.Connect(ctx, opts)
  if err != nil {
    return nil, fmt.Errorf("mongo.Connect: %w", err)
  }

  if err = client.Ping(ctx, nil); err != nil {
    return nil, fmt.Errorf("client.Ping: %w", err)
  }

  return &MongodbStore{client: client}, nil
}

type manifestDocument struct {
  Id       string          `bson:"_id"`
  Manifest models.Manifest `bson:"manifest"`
}

func (s *MongodbStore) Load(ctx context.Context) (models.Manifest, error) {
  var doc manifestDocument

  err := s.client.
    Database(mongodbDatabase).
    Collection(mongodbCollection).
    FindOne(ctx, bson.M{"_id": mongodbDocumentId}).
    Decode(&doc)

  if err != nil {
    if errors.Is(err, mongo.ErrNoDocuments) {
      return models.Manifest{}, ErrNotFound
    }
    return models.Manifest{}, fmt.Errorf("s.client.Database.Collection.FindOne: %w", err)
  }

  return doc.Manifest, nil
}

func (s *MongodbStore) Save(ctx context.Context, manifest models.Manifest) error {
  doc := manifestDocument{
    Id:       mongodbDocumentId,
    Manifest: manifest,
  }

  _, err := s.client.
    Database(mongodbDatabase).
    Collection(mongodbCollection).
    ReplaceOne(ctx, bson.M{"_id": mongodbDocumentId}, doc,
      options.Replace().SetUpsert(true))

  if err != nil {
    return fmt.Errorf("s.client.Database.Collection.ReplaceOne: %w", err)
  }

  return nil
}
