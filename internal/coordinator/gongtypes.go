package coordinator

// GongType describes one of the sounds a player can produce.
type GongType struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// GongTypes lists the sounds shipped with the player devices.
var GongTypes = []GongType{
	{Name: "brass-bowl", File: "sounds/brass-bowl.mp3"},
	{Name: "big-ben", File: "sounds/big-ben.mp3"},
	{Name: "big-gong", File: "sounds/big-gong.mp3"},
	{Name: "silence", File: "sounds/silence.mp3"},
	{Name: "beep", File: "sounds/beep.mp3"},
}

// ValidGongType reports whether name is one of the known sounds.
func ValidGongType(name string) bool {
	for _, t := range GongTypes {
		if t.Name == name {
			return true
		}
	}
	return false
}
