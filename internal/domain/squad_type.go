package domain

const DefaultSquadHandle = "default"

// SquadType 描述一种小队的组成规则：小队人数以及必须有人担任的特殊位置，其余位置都是输出
type SquadType struct {
	Handle       string   `json:"handle" yaml:"handle"`
	Name         string   `json:"name" yaml:"name"`
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	Size         int      `json:"size" yaml:"size"`
	SpecialRoles []string `json:"specialRoles" yaml:"special_roles"`
}

func DefaultSquadType() SquadType {
	return SquadType{
		Handle:  DefaultSquadHandle,
		Name:    "默认十人小队",
		Enabled: false,
		Size:    10,
		SpecialRoles: []string{
			"heal_quickness",
			"heal_alacrity",
			"boon_quickness",
			"boon_alacrity",
			"boon_might",
		},
	}
}

func (st *SquadType) DPSSlots() int {
	return max(st.Size-len(st.SpecialRoles), 0)
}
