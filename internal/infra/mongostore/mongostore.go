// Package mongostore is a MongoDB-backed implementation of the persistence
// gateway, for deployments that keep the ledger in their own cluster instead
// of a hosted PostgREST project. Ids are assigned on insert; amounts travel
// as decimal strings so nothing is lost to binary floating point.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/financeflow/financeflow/internal/domain"
	"github.com/financeflow/financeflow/internal/store"
)

// Store implements store.Store on top of a MongoDB database.
type Store struct {
	client       *mongo.Client
	transactions *mongo.Collection
	debts        *mongo.Collection
	preferences  *mongo.Collection
}

// New connects to MongoDB and pings it before returning a store.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	db := client.Database(dbName)
	return &Store{
		client:       client,
		transactions: db.Collection("transactions"),
		debts:        db.Collection("debts"),
		preferences:  db.Collection("preferences"),
	}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// transactionDoc is the stored shape of a transaction.
type transactionDoc struct {
	ID       string    `bson:"_id"`
	Amount   string    `bson:"amount"`
	Type     string    `bson:"type"`
	Category string    `bson:"category"`
	Note     string    `bson:"note"`
	Date     time.Time `bson:"date"`
}

func (d transactionDoc) toDomain() (domain.Transaction, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: bad amount %q: %w", d.ID, d.Amount, err)
	}
	return domain.Transaction{
		ID:       d.ID,
		Amount:   amount,
		Type:     domain.TransactionType(d.Type),
		Category: d.Category,
		Note:     d.Note,
		Date:     d.Date,
	}, nil
}

// debtDoc is the stored shape of a debt. paid_amount and is_paid keep the
// wire names; both read as their zero values on old documents.
type debtDoc struct {
	ID         string    `bson:"_id"`
	Person     string    `bson:"person"`
	Amount     string    `bson:"amount"`
	PaidAmount string    `bson:"paid_amount,omitempty"`
	IsPaid     bool      `bson:"is_paid,omitempty"`
	Type       string    `bson:"type"`
	Note       string    `bson:"note"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d debtDoc) toDomain() (domain.Debt, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return domain.Debt{}, fmt.Errorf("debt %s: bad amount %q: %w", d.ID, d.Amount, err)
	}
	paid := decimal.Zero
	if d.PaidAmount != "" {
		paid, err = decimal.NewFromString(d.PaidAmount)
		if err != nil {
			return domain.Debt{}, fmt.Errorf("debt %s: bad paid_amount %q: %w", d.ID, d.PaidAmount, err)
		}
	}
	return domain.Debt{
		ID:         d.ID,
		Person:     d.Person,
		Amount:     amount,
		PaidAmount: paid,
		IsPaid:     d.IsPaid,
		Type:       domain.DebtType(d.Type),
		Note:       d.Note,
		CreatedAt:  d.CreatedAt,
	}, nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.transactions.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Transaction
	for cursor.Next(ctx) {
		var doc transactionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("ListTransactions: decode: %w", err)
		}
		tx, err := doc.toDomain()
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: %w", err)
		}
		out = append(out, tx)
	}
	return out, cursor.Err()
}

func (s *Store) CreateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	tx.ID = uuid.New().String()
	doc := transactionDoc{
		ID:       tx.ID,
		Amount:   tx.Amount.String(),
		Type:     string(tx.Type),
		Category: tx.Category,
		Note:     tx.Note,
		Date:     tx.Date,
	}
	if _, err := s.transactions.InsertOne(ctx, doc); err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: %w", err)
	}
	return tx, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, id string, patch store.TransactionPatch) (domain.Transaction, error) {
	set := bson.M{}
	if patch.Amount != nil {
		set["amount"] = patch.Amount.String()
	}
	if patch.Type != nil {
		set["type"] = string(*patch.Type)
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Note != nil {
		set["note"] = *patch.Note
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc transactionDoc
	err := s.transactions.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return domain.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("UpdateTransaction: %w", err)
	}
	return doc.toDomain()
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.transactions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListDebts(ctx context.Context) ([]domain.Debt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.debts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("ListDebts: %w", err)
	}
	defer cursor.Close(ctx)

	var out []domain.Debt
	for cursor.Next(ctx) {
		var doc debtDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("ListDebts: decode: %w", err)
		}
		d, err := doc.toDomain()
		if err != nil {
			return nil, fmt.Errorf("ListDebts: %w", err)
		}
		out = append(out, d)
	}
	return out, cursor.Err()
}

func (s *Store) CreateDebt(ctx context.Context, d domain.Debt) (domain.Debt, error) {
	d.ID = uuid.New().String()
	doc := debtDoc{
		ID:         d.ID,
		Person:     d.Person,
		Amount:     d.Amount.String(),
		PaidAmount: d.PaidAmount.String(),
		IsPaid:     d.IsPaid,
		Type:       string(d.Type),
		Note:       d.Note,
		CreatedAt:  d.CreatedAt,
	}
	if _, err := s.debts.InsertOne(ctx, doc); err != nil {
		return domain.Debt{}, fmt.Errorf("CreateDebt: %w", err)
	}
	return d, nil
}

func (s *Store) UpdateDebt(ctx context.Context, id string, patch store.DebtPatch) (domain.Debt, error) {
	set := bson.M{}
	if patch.Person != nil {
		set["person"] = *patch.Person
	}
	if patch.Amount != nil {
		set["amount"] = patch.Amount.String()
	}
	if patch.Type != nil {
		set["type"] = string(*patch.Type)
	}
	if patch.Note != nil {
		set["note"] = *patch.Note
	}
	if patch.PaidAmount != nil {
		set["paid_amount"] = patch.PaidAmount.String()
	}
	if patch.IsPaid != nil {
		set["is_paid"] = *patch.IsPaid
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc debtDoc
	err := s.debts.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return domain.Debt{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Debt{}, fmt.Errorf("UpdateDebt: %w", err)
	}
	return doc.toDomain()
}

func (s *Store) DeleteDebt(ctx context.Context, id string) error {
	res, err := s.debts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("DeleteDebt: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// preferenceDoc keys the preferences collection by the slot name.
type preferenceDoc struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

func (s *Store) Preference(ctx context.Context, key string) (string, error) {
	var doc preferenceDoc
	err := s.preferences.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("Preference: %w", err)
	}
	return doc.Value, nil
}

func (s *Store) SetPreference(ctx context.Context, key, value string) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.preferences.ReplaceOne(ctx, bson.M{"_id": key}, preferenceDoc{Key: key, Value: value}, opts)
	if err != nil {
		return fmt.Errorf("SetPreference: %w", err)
	}
	return nil
}

// Ensure Store implements the gateway contract.
var _ store.Store = (*Store)(nil)
