package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aqar-chatbot/models"
)

var (
	mongoClient *mongo.Client
	database    *mongo.Database
)

// GetDatabase returns the MongoDB database instance
func GetDatabase() *mongo.Database {
	return database
}

// InitMongoDB initializes MongoDB connection
func InitMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	slog.Info("Connected to MongoDB")
	mongoClient = client

	return client, nil
}

// InitServices binds the database handle and creates indexes
func InitServices(client *mongo.Client, databaseName string) {
	database = client.Database(databaseName)

	createIndexes()
}

// createIndexes creates necessary database indexes
func createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Chat turn audit log indexes
	turnsCollection := database.Collection("chat_turns")
	turnsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"session_id": 1}},
		{Keys: bson.M{"created_at": -1}},
		{Keys: bson.M{"route": 1}},
	})

	// Knowledge base indexes
	knowledgeCollection := database.Collection("knowledge_documents")
	knowledgeCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"source": 1, "chunk_id": 1}},
		{Keys: bson.M{"created_at": -1}},
	})
}

// SaveChatTurn persists one handled turn to the audit log
func SaveChatTurn(ctx context.Context, turn *models.ChatTurn) error {
	if database == nil {
		return nil
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	collection := database.Collection("chat_turns")
	_, err := collection.InsertOne(ctx, turn)
	if err != nil {
		slog.Error("Failed to save chat turn", "error", err, "sessionID", turn.SessionID)
	}
	return err
}

// GetRecentTurns returns the latest turns of a session, newest first
func GetRecentTurns(ctx context.Context, sessionID string, limit int64) ([]models.ChatTurn, error) {
	collection := database.Collection("chat_turns")

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit)

	cursor, err := collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var turns []models.ChatTurn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}
