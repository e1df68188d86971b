package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type RosterGeneratedMailData struct {
	AccountName string         `json:"accountName"`
	RosterID    int64          `json:"rosterID"`
	SquadIndex  int            `json:"squadIndex"`
	Members     []RosterMember `json:"members"`
}
