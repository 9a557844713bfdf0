package dynamo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"eclinic/cmd/internal/domain/entity"
	"eclinic/cmd/internal/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type doctorItem struct {
	PK string `dynamodbav:"pk"`
	SK string `dynamodbav:"sk"`
	entity.Doctor
}

type patientItem struct {
	PK string `dynamodbav:"pk"`
	SK string `dynamodbav:"sk"`
	entity.Patient
}

type ProfileStore struct {
	client    dynamoAPI
	tableName string
}

func NewProfileStore(client dynamoAPI, tableName string) *ProfileStore {
	if client == nil {
		panic("dynamo: client cannot be nil")
	}
	if tableName == "" {
		panic("dynamo: table name cannot be empty")
	}
	return &ProfileStore{client: client, tableName: tableName}
}

func (s *ProfileStore) FindDoctor(ctx context.Context, id string) (*entity.Doctor, error) {
	var item doctorItem
	found, err := s.get(ctx, doctorKey(id), &item)
	if err != nil || !found {
		return nil, err
	}
	return &item.Doctor, nil
}

func (s *ProfileStore) FindPatient(ctx context.Context, id string) (*entity.Patient, error) {
	var item patientItem
	found, err := s.get(ctx, patientKey(id), &item)
	if err != nil || !found {
		return nil, err
	}
	return &item.Patient, nil
}

// ListDoctors scans the table for doctor profiles and sorts them by name.
func (s *ProfileStore) ListDoctors(ctx context.Context) ([]*entity.Doctor, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.tableName),
		FilterExpression: aws.String("begins_with(pk, :prefix) AND sk = :profile"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix":  &types.AttributeValueMemberS{Value: doctorKey("")},
			":profile": &types.AttributeValueMemberS{Value: skProfile},
		},
	}

	var doctors []*entity.Doctor
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamo: failed to scan doctors: %w", err)
		}
		var items []doctorItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("dynamo: failed to unmarshal doctors: %w", err)
		}
		for i := range items {
			doctors = append(doctors, &items[i].Doctor)
		}
	}

	slices.SortFunc(doctors, func(a, b *entity.Doctor) int {
		if c := cmp.Compare(a.LastName, b.LastName); c != 0 {
			return c
		}
		return cmp.Compare(a.FirstName, b.FirstName)
	})
	return doctors, nil
}

// SetDoctorSchedule replaces the stored schedule and availability flag of an
// existing doctor.
func (s *ProfileStore) SetDoctorSchedule(ctx context.Context, id string, schedule entity.WeeklySchedule, available bool) error {
	if schedule == nil {
		schedule = entity.WeeklySchedule{}
	}
	scheduleAttr, err := attributevalue.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("dynamo: failed to marshal schedule: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 itemKey(doctorKey(id), skProfile),
		UpdateExpression:    aws.String("SET #schedule = :schedule, #available = :available, #updated = :updated"),
		ConditionExpression: aws.String("attribute_exists(pk)"),
		ExpressionAttributeNames: map[string]string{
			"#schedule":  "weeklySchedule",
			"#available": "available",
			"#updated":   "updatedAt",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":schedule":  scheduleAttr,
			":available": &types.AttributeValueMemberBOOL{Value: available},
			":updated":   &types.AttributeValueMemberN{Value: strconv.FormatInt(utils.NowUTC(), 10)},
		},
	})
	var failed *types.ConditionalCheckFailedException
	if errors.As(err, &failed) {
		return fmt.Errorf("dynamo: doctor %s does not exist", id)
	}
	if err != nil {
		return fmt.Errorf("dynamo: failed to update schedule of doctor %s: %w", id, err)
	}
	return nil
}

// UpdateDoctorDetails writes the name and specialty of an existing doctor
// without touching its schedule or availability.
func (s *ProfileStore) UpdateDoctorDetails(ctx context.Context, doctor *entity.Doctor) error {
	doctor.UpdatedAt = utils.NowUTC()
	names := map[string]string{
		"#first":     "firstName",
		"#last":      "lastName",
		"#specialty": "specialty",
		"#updated":   "updatedAt",
	}
	values := map[string]types.AttributeValue{
		":first":   &types.AttributeValueMemberS{Value: doctor.FirstName},
		":last":    &types.AttributeValueMemberS{Value: doctor.LastName},
		":updated": &types.AttributeValueMemberN{Value: strconv.FormatInt(doctor.UpdatedAt, 10)},
	}
	update := "SET #first = :first, #last = :last, #updated = :updated"
	if doctor.Specialty != "" {
		update += ", #specialty = :specialty"
		values[":specialty"] = &types.AttributeValueMemberS{Value: doctor.Specialty}
	} else {
		update += " REMOVE #specialty"
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       itemKey(doctorKey(doctor.ID), skProfile),
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String("attribute_exists(pk)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	var failed *types.ConditionalCheckFailedException
	if errors.As(err, &failed) {
		return fmt.Errorf("dynamo: doctor %s does not exist", doctor.ID)
	}
	if err != nil {
		return fmt.Errorf("dynamo: failed to update doctor %s: %w", doctor.ID, err)
	}
	return nil
}

func (s *ProfileStore) SaveDoctor(ctx context.Context, doctor *entity.Doctor) error {
	if doctor.Schedule == nil {
		doctor.Schedule = entity.WeeklySchedule{}
	}
	stampProfile(&doctor.CreatedAt, &doctor.UpdatedAt)
	return s.put(ctx, &doctorItem{PK: doctorKey(doctor.ID), SK: skProfile, Doctor: *doctor})
}

func (s *ProfileStore) SavePatient(ctx context.Context, patient *entity.Patient) error {
	stampProfile(&patient.CreatedAt, &patient.UpdatedAt)
	return s.put(ctx, &patientItem{PK: patientKey(patient.ID), SK: skProfile, Patient: *patient})
}

func (s *ProfileStore) get(ctx context.Context, pk string, out any) (bool, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(pk, skProfile),
	})
	if err != nil {
		return false, fmt.Errorf("dynamo: failed to get %s: %w", pk, err)
	}
	if len(resp.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return false, fmt.Errorf("dynamo: failed to unmarshal %s: %w", pk, err)
	}
	return true, nil
}

func (s *ProfileStore) put(ctx context.Context, in any) error {
	item, err := attributevalue.MarshalMap(in)
	if err != nil {
		return fmt.Errorf("dynamo: failed to marshal profile: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamo: failed to save profile: %w", err)
	}
	return nil
}

func stampProfile(createdAt, updatedAt *int64) {
	now := utils.NowUTC()
	if *createdAt == 0 {
		*createdAt = now
	}
	*updatedAt = now
}
