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

type LeadRepository struct {
	collection *mongo.Collection
}

func NewLeadRepository(db *database.MongoDB) *LeadRepository {
	return &LeadRepository{
		collection: db.Leads(),
	}
}

func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	if lead.ID.IsZero() {
		lead.ID = primitive.NewObjectID()
	}
	if lead.Status == "" {
		lead.Status = models.StatusNew
	}
	if lead.Source == "" {
		lead.Source = "Website"
	}
	if lead.History == nil {
		lead.History = []models.HistoryEntry{}
	}

	_, err := r.collection.InsertOne(ctx, lead)
	return err
}

// InsertMany stores a batch of imported leads, each already tagged with its
// owner. Returns the number of inserted documents.
func (r *LeadRepository) InsertMany(ctx context.Context, leads []*models.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(leads))
	now := time.Now()
	for _, lead := range leads {
		lead.CreatedAt = now
		lead.UpdatedAt = now
		if lead.ID.IsZero() {
			lead.ID = primitive.NewObjectID()
		}
		if lead.Status == "" {
			lead.Status = models.StatusNew
		}
		if lead.Source == "" {
			lead.Source = "Import"
		}
		if lead.History == nil {
			lead.History = []models.HistoryEntry{}
		}
		docs = append(docs, lead)
	}

	res, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func (r *LeadRepository) FindAllByOwner(ctx context.Context, userID string) ([]*models.Lead, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"assignedTo": owner}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	leads := []*models.Lead{}
	if err = cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *LeadRepository) FindByIDForOwner(ctx context.Context, id, userID string) (*models.Lead, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	var lead models.Lead
	err = r.collection.FindOne(ctx, bson.M{"_id": oid, "assignedTo": owner}).Decode(&lead)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// Update applies the provided fields to an owner's lead. A status change also
// appends a StatusChange history entry recording the old and new status.
func (r *LeadRepository) Update(ctx context.Context, id, userID string, req *models.UpdateLeadRequest, performedBy primitive.ObjectID) (*models.Lead, error) {
	current, err := r.FindByIDForOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.WhatsApp != nil {
		set["whatsapp"] = *req.WhatsApp
	}
	if req.Company != nil {
		set["company"] = *req.Company
	}
	if req.Source != nil {
		set["source"] = *req.Source
	}
	if req.Value != nil {
		set["value"] = *req.Value
	}

	update := bson.M{"$set": set}

	if req.Status != nil && *req.Status != current.Status {
		set["status"] = *req.Status
		update["$push"] = bson.M{
			"history": models.HistoryEntry{
				Type:        models.HistoryStatusChange,
				Content:     current.Status + " → " + *req.Status,
				Date:        time.Now(),
				PerformedBy: performedBy,
			},
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Lead
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": current.ID, "assignedTo": current.AssignedTo}, update, opts).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *LeadRepository) Delete(ctx context.Context, id, userID string) error {
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

// DeleteMany removes the owner's leads among ids. Unknown or foreign ids are
// simply skipped; the returned count reflects actual deletions.
func (r *LeadRepository) DeleteMany(ctx context.Context, ids []string, userID string) (int, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, err
	}

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{
		"_id":        bson.M{"$in": oids},
		"assignedTo": owner,
	})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

// RecordOutreach applies the result of an outreach action in one write:
// history entries appended in order, engagement timestamp refreshed, and the
// status updated when the New → Contacted auto-transition fired.
func (r *LeadRepository) RecordOutreach(ctx context.Context, leadID primitive.ObjectID, entries []models.HistoryEntry, newStatus string, engagedAt time.Time) error {
	set := bson.M{
		"lastEngagementDate": engagedAt,
		"updatedAt":          time.Now(),
	}
	if newStatus != "" {
		set["status"] = newStatus
	}

	update := bson.M{
		"$push": bson.M{"history": bson.M{"$each": entries}},
		"$set":  set,
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": leadID}, update)
	return err
}

// ===== Aggregations for the analytics dashboard =====

func (r *LeadRepository) CountByOwner(ctx context.Context, userID string) (int, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, err
	}
	count, err := r.collection.CountDocuments(ctx, bson.M{"assignedTo": owner})
	return int(count), err
}

func (r *LeadRepository) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, err
	}
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"assignedTo": owner,
		"createdAt":  bson.M{"$gte": since},
	})
	return int(count), err
}

// TotalWonRevenue sums the value of all Won leads for the owner. Missing
// values count as zero via $ifNull.
func (r *LeadRepository) TotalWonRevenue(ctx context.Context, userID string) (float64, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, err
	}
	return r.wonRevenue(ctx, bson.M{"assignedTo": owner, "status": models.StatusWon})
}

// WonRevenueSince sums the value of Won leads created at or after since.
func (r *LeadRepository) WonRevenueSince(ctx context.Context, userID string, since time.Time) (float64, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, err
	}
	return r.wonRevenue(ctx, bson.M{
		"assignedTo": owner,
		"status":     models.StatusWon,
		"createdAt":  bson.M{"$gte": since},
	})
}

func (r *LeadRepository) wonRevenue(ctx context.Context, match bson.M) (float64, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": bson.M{"$ifNull": []interface{}{"$value", 0}}},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Revenue, nil
}

// CountsByStatus groups the owner's leads by pipeline status.
func (r *LeadRepository) CountsByStatus(ctx context.Context, userID string) ([]models.StatusCount, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	pipeline := []bson.M{
		{"$match": bson.M{"assignedTo": owner}},
		{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"count": -1}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.StatusCount{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// WeeklyPerformance buckets leads created at or after since by creation day,
// reporting lead count, won count, and won revenue per day ascending.
func (r *LeadRepository) WeeklyPerformance(ctx context.Context, userID string, since time.Time) ([]models.WeeklyPoint, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	wonCond := bson.M{"$cond": []interface{}{
		bson.M{"$eq": []interface{}{"$status", models.StatusWon}},
		1,
		0,
	}}
	wonValueCond := bson.M{"$cond": []interface{}{
		bson.M{"$eq": []interface{}{"$status", models.StatusWon}},
		bson.M{"$ifNull": []interface{}{"$value", 0}},
		0,
	}}

	pipeline := []bson.M{
		{"$match": bson.M{
			"assignedTo": owner,
			"createdAt":  bson.M{"$gte": since},
		}},
		{"$group": bson.M{
			"_id": bson.M{
				"$dateToString": bson.M{
					"format": "%Y-%m-%d",
					"date":   "$createdAt",
				},
			},
			"leads":   bson.M{"$sum": 1},
			"won":     bson.M{"$sum": wonCond},
			"revenue": bson.M{"$sum": wonValueCond},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.WeeklyPoint{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// SourceBreakdown groups the owner's leads by acquisition source.
func (r *LeadRepository) SourceBreakdown(ctx context.Context, userID string) ([]models.SourceCount, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	pipeline := []bson.M{
		{"$match": bson.M{"assignedTo": owner}},
		{"$group": bson.M{
			"_id":   "$source",
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"count": -1}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.SourceCount{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// SourceConversion reports per-source totals, won counts, won revenue, and
// conversion rate, sorted by conversion rate descending.
func (r *LeadRepository) SourceConversion(ctx context.Context, userID string) ([]models.SourceConversion, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	wonCond := bson.M{"$cond": []interface{}{
		bson.M{"$eq": []interface{}{"$status", models.StatusWon}},
		1,
		0,
	}}
	wonValueCond := bson.M{"$cond": []interface{}{
		bson.M{"$eq": []interface{}{"$status", models.StatusWon}},
		bson.M{"$ifNull": []interface{}{"$value", 0}},
		0,
	}}

	pipeline := []bson.M{
		{"$match": bson.M{"assignedTo": owner}},
		{"$group": bson.M{
			"_id":          "$source",
			"totalLeads":   bson.M{"$sum": 1},
			"wonLeads":     bson.M{"$sum": wonCond},
			"totalRevenue": bson.M{"$sum": wonValueCond},
		}},
		{"$project": bson.M{
			"totalLeads":   1,
			"wonLeads":     1,
			"totalRevenue": 1,
			"conversionRate": bson.M{"$cond": []interface{}{
				bson.M{"$gt": []interface{}{"$totalLeads", 0}},
				bson.M{"$multiply": []interface{}{
					bson.M{"$divide": []interface{}{"$wonLeads", "$totalLeads"}},
					100,
				}},
				0,
			}},
		}},
		{"$sort": bson.M{"conversionRate": -1}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.SourceConversion{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
