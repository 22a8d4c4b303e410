package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/larryflorio/larrybot/models"
)

var ErrClientNotFound = errors.New("client not found")

type ClientRepository struct {
	DB *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

func (r *ClientRepository) Create(name string) (*models.Client, error) {
	client := models.Client{Name: name}
	if err := r.DB.Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) GetByID(id uint) (*models.Client, error) {
	var client models.Client
	if err := r.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) GetByName(name string) (*models.Client, error) {
	var client models.Client
	if err := r.DB.Where("name = ?", name).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) List() ([]models.Client, error) {
	var clients []models.Client
	if err := r.DB.Order("name asc").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Delete removes the client and unassigns its tasks.
func (r *ClientRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("client_id = ?", id).
			Update("client_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Client{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrClientNotFound
		}
		return nil
	})
}
