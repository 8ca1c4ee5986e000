package repository

import (
	"context"
	"time"

	"salesor-api/internal/database"
	"salesor-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CustomerRepository struct {
	collection *mongo.Collection
}

func NewCustomerRepository(db *database.MongoDB) *CustomerRepository {
	return &CustomerRepository{
		collection: db.Customers(),
	}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	customer.CreatedAt = time.Now()
	if customer.ID.IsZero() {
		customer.ID = primitive.NewObjectID()
	}
	if customer.Status == "" {
		customer.Status = "Active"
	}
	if customer.LastOrderDate.IsZero() {
		customer.LastOrderDate = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, customer)
	return err
}

func (r *CustomerRepository) InsertMany(ctx context.Context, customers []*models.Customer) (int, error) {
	if len(customers) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(customers))
	now := time.Now()
	for _, customer := range customers {
		customer.CreatedAt = now
		if customer.ID.IsZero() {
			customer.ID = primitive.NewObjectID()
		}
		if customer.Status == "" {
			customer.Status = "Active"
		}
		if customer.LastOrderDate.IsZero() {
			customer.LastOrderDate = now
		}
		docs = append(docs, customer)
	}

	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func (r *CustomerRepository) FindAllByOwner(ctx context.Context, userID string) ([]*models.Customer, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.collection.Find(ctx, bson.M{"assignedTo": owner})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	customers := []*models.Customer{}
	if err = cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) FindByIDForOwner(ctx context.Context, id, userID string) (*models.Customer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	var customer models.Customer
	err = r.collection.FindOne(ctx, bson.M{"_id": oid, "assignedTo": owner}).Decode(&customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) Update(ctx context.Context, id, userID string, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Company != nil {
		set["company"] = *req.Company
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	if req.TotalSpent != nil {
		set["totalSpent"] = *req.TotalSpent
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Customer
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid, "assignedTo": owner}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid, "assignedTo": owner})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
