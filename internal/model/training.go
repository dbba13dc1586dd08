package model

import "time"

// swagger:model Training
type Training struct {
	BaseModel
	Name          string     `gorm:"size:255;not null" json:"name"`
	Topics        string     `gorm:"type:text" json:"topics"`
	Competency    string     `gorm:"size:100" json:"competency"`
	Skill         string     `gorm:"size:100" json:"skill"`
	SkillCategory string     `gorm:"size:50" json:"skillCategory"`
	TrainingDate  *time.Time `json:"trainingDate,omitempty"`
	Duration      string     `gorm:"size:50" json:"duration"`
	TrainingType  string     `gorm:"size:50" json:"trainingType"`
	Seats         int        `gorm:"default:0" json:"seats"`

	Trainers []TrainingTrainer `gorm:"foreignKey:TrainingID" json:"trainers,omitempty"`
}

func (Training) TableName() string {
	return "trainings"
}

// TrainingTrainer binds a trainer identity to a training. A training may have
// several rows here (co-trainers), all equally eligible to author content.
type TrainingTrainer struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TrainingID uint   `gorm:"uniqueIndex:uq_training_trainer;type:bigint unsigned" json:"trainingId"`
	Username   string `gorm:"uniqueIndex:uq_training_trainer;size:50;not null" json:"username"`
}

func (TrainingTrainer) TableName() string {
	return "training_trainers"
}

// TrainingAssignment links a training to an employee who must attend it.
type TrainingAssignment struct {
	BaseModel
	TrainingID       uint   `gorm:"uniqueIndex:uq_training_employee;type:bigint unsigned" json:"trainingId"`
	EmployeeUsername string `gorm:"uniqueIndex:uq_training_employee;size:50;not null" json:"employeeUsername"`
	ManagerUsername  string `gorm:"index;size:50;not null" json:"managerUsername"`
}

func (TrainingAssignment) TableName() string {
	return "training_assignments"
}
