package domain

// Dataset is the bootstrap seed shape. Collections are applied in order and
// their ids are kept verbatim.
type Dataset struct {
	Projects   []Project   `json:"projects"`
	Workspaces []Workspace `json:"workspaces"`
	Epics      []Epic      `json:"epics"`
	EpicItems  []EpicItem  `json:"epicItems"`
	Sprints    []Sprint    `json:"sprints"`
	Tasks      []Task      `json:"tasks"`
	Columns    []Column    `json:"columns"`
	Tags       []Tag       `json:"tags"`
	Users      []User      `json:"users"`
	Teams      []Team      `json:"teams"`
}
