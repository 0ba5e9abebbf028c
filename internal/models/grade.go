package models

import (
	"time"

	"github.com/lib/pq"
)

// Grade is an append-only fact record. There is no update or delete path.
type Grade struct {
	ID        int64     `db:"id"`
	StudentID int64     `db:"student_id"`
	SubjectID int64     `db:"subject_id"`
	Grade     int       `db:"grade"`
	TeacherID int64     `db:"teacher_id"`
	Date      time.Time `db:"date"`
}

// SubjectReport aggregates one student's grades in one subject. Every
// subject appears in the report even when the grade list is empty; the
// average is 0 then, never null.
type SubjectReport struct {
	ID      int64         `db:"id" json:"id"`
	Name    string        `db:"name" json:"name"`
	Icon    string        `db:"icon" json:"icon"`
	Grades  pq.Int64Array `db:"grades" json:"grades"`
	Average float64       `db:"average" json:"average"`
}

// LeaderboardEntry ranks a student by overall average grade. Rank is
// assigned in descending-score order starting at 1; ties get distinct
// consecutive ranks.
type LeaderboardEntry struct {
	ID     int64   `db:"id" json:"id"`
	Name   string  `db:"full_name" json:"name"`
	Avatar string  `db:"avatar_emoji" json:"avatar"`
	Score  float64 `db:"score" json:"score"`
	Rank   int     `db:"-" json:"rank"`
}
