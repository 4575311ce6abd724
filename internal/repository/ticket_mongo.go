package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/ticket-api/internal/domain"
)

type ticketDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Client   string             `bson:"client"`
	Issue    string             `bson:"issue"`
	Status   string             `bson:"status"`
	Deadline time.Time          `bson:"deadline"`
}

func (d ticketDocument) toDomain() domain.Ticket {
	return domain.Ticket{
		ID:       d.ID.Hex(),
		Client:   d.Client,
		Issue:    d.Issue,
		Status:   domain.TicketStatus(d.Status),
		Deadline: d.Deadline.UTC(),
	}
}

// MongoTicketRepository stores tickets as documents in a single collection.
type MongoTicketRepository struct {
	collection *mongo.Collection
}

// NewMongoTicketRepository instantiates the repository over collection.
func NewMongoTicketRepository(collection *mongo.Collection) *MongoTicketRepository {
	return &MongoTicketRepository{collection: collection}
}

// EnsureIndexes creates the deadline index used by List.
func (r *MongoTicketRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "deadline", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create deadline index: %w", err)
	}
	return nil
}

func (r *MongoTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "deadline", Value: -1}})
	cur, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tickets := make([]domain.Ticket, 0)
	for cur.Next(ctx) {
		var doc ticketDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		tickets = append(tickets, doc.toDomain())
	}
	return tickets, cur.Err()
}

func (r *MongoTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	doc := ticketDocument{
		ID:       primitive.NewObjectID(),
		Client:   ticket.Client,
		Issue:    ticket.Issue,
		Status:   string(ticket.Status),
		Deadline: ticket.Deadline,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	ticket.ID = doc.ID.Hex()
	return nil
}

func (r *MongoTicketRepository) FindAndUpdate(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.D{}
	if patch.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*patch.Status)})
	}
	filter := bson.D{{Key: "_id", Value: oid}}

	var doc ticketDocument
	if len(set) == 0 {
		err = r.collection.FindOne(ctx, filter).Decode(&doc)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.collection.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	ticket := doc.toDomain()
	return &ticket, nil
}
