package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eclinic/cmd/internal/domain/entity"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

type profileSource interface {
	FindDoctor(ctx context.Context, id string) (*entity.Doctor, error)
	FindPatient(ctx context.Context, id string) (*entity.Patient, error)
	ListDoctors(ctx context.Context) ([]*entity.Doctor, error)
	SetDoctorSchedule(ctx context.Context, id string, schedule entity.WeeklySchedule, available bool) error
	UpdateDoctorDetails(ctx context.Context, doctor *entity.Doctor) error
	SaveDoctor(ctx context.Context, doctor *entity.Doctor) error
	SavePatient(ctx context.Context, patient *entity.Patient) error
}

// ProfileCache is a read-through redis cache in front of a profile store.
// Writes go to the store first and then drop the cached entry. Redis
// failures never fail a read; the store answers instead.
type ProfileCache struct {
	source profileSource
	redis  *redis.Client
	ttl    time.Duration
}

func NewProfileCache(source profileSource, redisClient *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{source: source, redis: redisClient, ttl: ttl}
}

func doctorKey(id string) string {
	return fmt.Sprintf("eclinic:doctor:%s", id)
}

func patientKey(id string) string {
	return fmt.Sprintf("eclinic:patient:%s", id)
}

func (c *ProfileCache) FindDoctor(ctx context.Context, id string) (*entity.Doctor, error) {
	var doctor entity.Doctor
	if c.lookup(ctx, doctorKey(id), &doctor) {
		return &doctor, nil
	}

	found, err := c.source.FindDoctor(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	c.store(ctx, doctorKey(id), found)
	return found, nil
}

func (c *ProfileCache) FindPatient(ctx context.Context, id string) (*entity.Patient, error) {
	var patient entity.Patient
	if c.lookup(ctx, patientKey(id), &patient) {
		return &patient, nil
	}

	found, err := c.source.FindPatient(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	c.store(ctx, patientKey(id), found)
	return found, nil
}

func (c *ProfileCache) ListDoctors(ctx context.Context) ([]*entity.Doctor, error) {
	return c.source.ListDoctors(ctx)
}

func (c *ProfileCache) SetDoctorSchedule(ctx context.Context, id string, schedule entity.WeeklySchedule, available bool) error {
	if err := c.source.SetDoctorSchedule(ctx, id, schedule, available); err != nil {
		return err
	}
	c.invalidate(ctx, doctorKey(id))
	return nil
}

func (c *ProfileCache) UpdateDoctorDetails(ctx context.Context, doctor *entity.Doctor) error {
	if err := c.source.UpdateDoctorDetails(ctx, doctor); err != nil {
		return err
	}
	c.invalidate(ctx, doctorKey(doctor.ID))
	return nil
}

func (c *ProfileCache) SaveDoctor(ctx context.Context, doctor *entity.Doctor) error {
	if err := c.source.SaveDoctor(ctx, doctor); err != nil {
		return err
	}
	c.invalidate(ctx, doctorKey(doctor.ID))
	return nil
}

func (c *ProfileCache) SavePatient(ctx context.Context, patient *entity.Patient) error {
	if err := c.source.SavePatient(ctx, patient); err != nil {
		return err
	}
	c.invalidate(ctx, patientKey(patient.ID))
	return nil
}

func (c *ProfileCache) lookup(ctx context.Context, key string, out any) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Warnf("profile cache read of %s failed: %v", key, err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warnf("dropping unreadable profile cache entry %s: %v", key, err)
		c.invalidate(ctx, key)
		return false
	}
	return true
}

func (c *ProfileCache) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warnf("failed to encode profile cache entry %s: %v", key, err)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warnf("profile cache write of %s failed: %v", key, err)
	}
}

func (c *ProfileCache) invalidate(ctx context.Context, key string) {
	if err := c.redis.Del(ctx, key).Err(); err != nil {
		log.Warnf("failed to invalidate profile cache entry %s: %v", key, err)
	}
}
