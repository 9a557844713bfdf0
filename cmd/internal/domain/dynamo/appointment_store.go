package dynamo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"eclinic/cmd/internal/domain/entity"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

type appointmentItem struct {
	PK     string `dynamodbav:"pk"`
	SK     string `dynamodbav:"sk"`
	GSI1PK string `dynamodbav:"gsi1pk"`
	GSI2PK string `dynamodbav:"gsi2pk"`
	entity.Appointment
}

// slotLock exists while a CONFIRMED appointment holds the doctor's slot.
type slotLock struct {
	PK            string `dynamodbav:"pk"`
	SK            string `dynamodbav:"sk"`
	AppointmentID string `dynamodbav:"appointmentId"`
}

type AppointmentStore struct {
	client    dynamoAPI
	tableName string
}

func NewAppointmentStore(client dynamoAPI, tableName string) *AppointmentStore {
	if client == nil {
		panic("dynamo: client cannot be nil")
	}
	if tableName == "" {
		panic("dynamo: table name cannot be empty")
	}
	return &AppointmentStore{client: client, tableName: tableName}
}

func toAppointmentItem(appt *entity.Appointment) *appointmentItem {
	return &appointmentItem{
		PK:          appointmentKey(appt.ID),
		SK:          skAppointment,
		GSI1PK:      doctorKey(appt.DoctorID),
		GSI2PK:      patientKey(appt.PatientID),
		Appointment: *appt,
	}
}

// CreateConfirmed writes the appointment together with its slot lock. The
// lock put is conditional, so of two concurrent bookings of one slot only
// the first transaction commits.
func (s *AppointmentStore) CreateConfirmed(ctx context.Context, appt *entity.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	appt.Status = entity.StatusConfirmed

	item, err := attributevalue.MarshalMap(toAppointmentItem(appt))
	if err != nil {
		return fmt.Errorf("dynamo: failed to marshal appointment: %w", err)
	}
	lock, err := attributevalue.MarshalMap(&slotLock{
		PK:            slotLockKey(appt.DoctorID, appt.StartsAt),
		SK:            skLock,
		AppointmentID: appt.ID,
	})
	if err != nil {
		return fmt.Errorf("dynamo: failed to marshal slot lock: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.tableName),
				Item:                lock,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(s.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
		},
	})
	if lostSlotLock(err) {
		return entity.ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("dynamo: failed to book slot: %w", err)
	}
	return nil
}

func (s *AppointmentStore) FindConfirmedByDoctor(ctx context.Context, doctorID string, fromMillis int64) ([]*entity.Appointment, error) {
	return s.queryIndex(ctx, indexByDoctor, attrGSI1PK, doctorKey(doctorID), fromMillis, true)
}

func (s *AppointmentStore) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            itemKey(appointmentKey(id), skAppointment),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo: failed to get appointment %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var item appointmentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("dynamo: failed to unmarshal appointment: %w", err)
	}
	return &item.Appointment, nil
}

// FindByParticipant merges the appointments where userID is the doctor with
// those where userID is the patient.
func (s *AppointmentStore) FindByParticipant(ctx context.Context, userID string) ([]*entity.Appointment, error) {
	asDoctor, err := s.queryIndex(ctx, indexByDoctor, attrGSI1PK, doctorKey(userID), 0, false)
	if err != nil {
		return nil, err
	}
	asPatient, err := s.queryIndex(ctx, indexByPatient, attrGSI2PK, patientKey(userID), 0, false)
	if err != nil {
		return nil, err
	}

	appts := append(asDoctor, asPatient...)
	slices.SortFunc(appts, func(a, b *entity.Appointment) int {
		if c := cmp.Compare(a.StartsAt, b.StartsAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return slices.CompactFunc(appts, func(a, b *entity.Appointment) bool { return a.ID == b.ID }), nil
}

func (s *AppointmentStore) Save(ctx context.Context, appt *entity.Appointment) error {
	item, err := attributevalue.MarshalMap(toAppointmentItem(appt))
	if err != nil {
		return fmt.Errorf("dynamo: failed to marshal appointment: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(pk)"),
	})
	if err != nil {
		return fmt.Errorf("dynamo: failed to save appointment %s: %w", appt.ID, err)
	}
	return nil
}

// Cancel stores the CANCELLED appointment and drops its slot lock in one
// transaction. The lock delete only succeeds when the lock is absent or
// held by this appointment; otherwise the transaction is cancelled and
// nothing is written.
func (s *AppointmentStore) Cancel(ctx context.Context, appt *entity.Appointment) error {
	appt.Status = entity.StatusCancelled
	item, err := attributevalue.MarshalMap(toAppointmentItem(appt))
	if err != nil {
		return fmt.Errorf("dynamo: failed to marshal appointment: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_exists(pk)"),
			}},
			{Delete: &types.Delete{
				TableName:           aws.String(s.tableName),
				Key:                 itemKey(slotLockKey(appt.DoctorID, appt.StartsAt), skLock),
				ConditionExpression: aws.String("attribute_not_exists(pk) OR appointmentId = :id"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":id": &types.AttributeValueMemberS{Value: appt.ID},
				},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamo: failed to cancel appointment %s: %w", appt.ID, err)
	}
	return nil
}

func (s *AppointmentStore) queryIndex(ctx context.Context, index, hashAttr, hashValue string, fromMillis int64, confirmedOnly bool) ([]*entity.Appointment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(hashAttr + " = :pk AND " + attrStarts + " >= :from"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: hashValue},
			":from": &types.AttributeValueMemberN{Value: strconv.FormatInt(fromMillis, 10)},
		},
	}
	if confirmedOnly {
		input.FilterExpression = aws.String("#status = :confirmed")
		input.ExpressionAttributeNames = map[string]string{"#status": "status"}
		input.ExpressionAttributeValues[":confirmed"] = &types.AttributeValueMemberS{Value: string(entity.StatusConfirmed)}
	}

	var appts []*entity.Appointment
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamo: failed to query %s: %w", index, err)
		}

		var items []appointmentItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("dynamo: failed to unmarshal appointments: %w", err)
		}
		for i := range items {
			appts = append(appts, &items[i].Appointment)
		}
	}
	return appts, nil
}

// lostSlotLock reports whether a booking transaction was cancelled because
// the slot lock (item 0) is held or being written by another transaction.
func lostSlotLock(err error) bool {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for i, reason := range canceled.CancellationReasons {
			switch aws.ToString(reason.Code) {
			case "ConditionalCheckFailed":
				return true
			case "TransactionConflict":
				if i == 0 {
					return true
				}
			}
		}
		return false
	}
	var failed *types.ConditionalCheckFailedException
	return errors.As(err, &failed)
}
