package domain

import "time"

type RosterMember struct {
	PlayerID    int64  `json:"playerID"`
	AccountName string `json:"accountName"`
	Role        string `json:"role"`
	IsCommander bool   `json:"isCommander"`
}

type RosterSquad struct {
	Index       int            `json:"index"`
	CommanderID int64          `json:"commanderID"`
	Members     []RosterMember `json:"members"`
}

// Roster 是最终采用的分队结果
type Roster struct {
	ID        int64         `json:"id"`
	RunID     string        `json:"runID"`
	SquadType string        `json:"squadType"`
	NumSquads int           `json:"numSquads"`
	Heuristic int           `json:"heuristic"`
	Squads    []RosterSquad `json:"squads"`
	CreatedAt time.Time     `json:"createdAt"`
	Version   int32         `json:"-"`
}

type RosterRunStatus string

const (
	RosterRunRunning   RosterRunStatus = "running"
	RosterRunSucceeded RosterRunStatus = "succeeded"
	RosterRunCancelled RosterRunStatus = "cancelled"
	RosterRunExhausted RosterRunStatus = "exhausted"
	RosterRunFailed    RosterRunStatus = "failed"
)

// RosterRun 记录一次分队搜索的进度
type RosterRun struct {
	ID            string          `json:"id"`
	Status        RosterRunStatus `json:"status"`
	MaxSquads     int             `json:"maxSquads"`
	ResultCount   int             `json:"resultCount"`
	BestHeuristic *int            `json:"bestHeuristic"`
	RosterID      *int64          `json:"rosterID"`
	Error         string          `json:"error,omitempty"`
	StartedAt     time.Time       `json:"startedAt"`
	FinishedAt    *time.Time      `json:"finishedAt"`
}
