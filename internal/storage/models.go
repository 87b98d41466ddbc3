package storage

import "time"

type UserProfile struct {
	UID            string
	DisplayName    string
	PlayerLevel    int
	TotalXP        int
	CrystalGauges  map[string]int
	CurrentChapter string
	DailyTaskLimit int
	CarePoints     int
	CreatedAt      time.Time
}

type TaskRecord struct {
	ID               int64
	UID              string
	TaskType         string
	Title            string
	Difficulty       int
	Status           string
	DueDate          *time.Time
	CompletedAt      *time.Time
	XPEarned         int
	MoodAtCompletion *int
	Tags             []string
	CreatedAt        time.Time
}

type MoodLog struct {
	ID          int64
	UID         string
	LogDate     time.Time
	MoodScore   int
	Coefficient float64
	Notes       string
	CreatedAt   time.Time
}

type CrystalSystemRow struct {
	UID               string
	ResonanceLevel    int
	TotalGrowthEvents int
	ActiveSynergies   []string
	Version           int64
}

type CrystalStateRow struct {
	UID        string
	Attribute  string
	Value      int
	GrowthRate float64
	LastGrowth *time.Time
	Milestones []string
}

type GrowthRecordRow struct {
	ID             int64
	UID            string
	Attribute      string
	EventKind      string
	Amount         int
	IdempotencyKey string
	Context        string
	CreatedAt      time.Time
}
