package battle

import "anime-battle-bot/internal/model"

// Combatant is one side of a fight with its session-local health.
// HP starts at the character's stored hp and is never written back.
type Combatant struct {
	Owner     Participant
	Character model.Character
	HP        int
	MaxHP     int
}

// NewCombatant prepares a fighter at full health.
func NewCombatant(owner Participant, c model.Character) Combatant {
	hp := c.HP
	if hp < 1 {
		hp = 1
	}
	return Combatant{Owner: owner, Character: c, HP: hp, MaxHP: hp}
}

// Board is the state of both sides, challenger first.
type Board struct {
	First  Combatant
	Second Combatant
}

// Turn is the result of one attack.
type Turn struct {
	Index            int // 0-based
	Attacker         Participant
	Defender         Participant
	AttackerName     string
	DefenderName     string
	Damage           int
	DefenderHPBefore int
	DefenderHP       int
	Board            Board // after the attack
}

// Finishing reports whether this turn knocked the defender out.
func (t Turn) Finishing() bool {
	return t.DefenderHP == 0
}

// Damage returns the hit an attacker deals: attack minus defense, at least 1.
func Damage(attack, defense int) int {
	d := attack - defense
	if d < 1 {
		return 1
	}
	return d
}

// Combat is the turn loop of one battle. Turns alternate starting with the first
// combatant, the challenger. Speed does not affect order.
type Combat struct {
	sides [2]Combatant
	turn  int
}

// NewCombat starts a fight; first attacks on turn 0.
func NewCombat(first, second Combatant) *Combat {
	return &Combat{sides: [2]Combatant{first, second}}
}

// Done reports whether one side is at 0 health.
func (c *Combat) Done() bool {
	return c.sides[0].HP <= 0 || c.sides[1].HP <= 0
}

// Turns returns how many turns have been resolved.
func (c *Combat) Turns() int {
	return c.turn
}

// Board returns the current state of both sides.
func (c *Combat) Board() Board {
	return Board{First: c.sides[0], Second: c.sides[1]}
}

// Step resolves the next turn. ok is false once the fight is over.
func (c *Combat) Step() (t Turn, ok bool) {
	if c.Done() {
		return Turn{}, false
	}

	atk, def := &c.sides[0], &c.sides[1]
	if c.turn%2 == 1 {
		atk, def = def, atk
	}

	dmg := Damage(atk.Character.Attack, def.Character.Defense)
	before := def.HP
	def.HP -= dmg
	if def.HP < 0 {
		def.HP = 0
	}

	t = Turn{
		Index:            c.turn,
		Attacker:         atk.Owner,
		Defender:         def.Owner,
		AttackerName:     atk.Character.Name,
		DefenderName:     def.Character.Name,
		Damage:           dmg,
		DefenderHPBefore: before,
		DefenderHP:       def.HP,
	}
	c.turn++
	t.Board = c.Board()
	return t, true
}

// Winner returns the side still standing. Only meaningful once Done is true.
func (c *Combat) Winner() Combatant {
	if c.sides[0].HP > 0 {
		return c.sides[0]
	}
	return c.sides[1]
}

// Loser returns the side that fell. Only meaningful once Done is true.
func (c *Combat) Loser() Combatant {
	if c.sides[0].HP > 0 {
		return c.sides[1]
	}
	return c.sides[0]
}

// Simulate runs a fight to the end and returns the winner and every turn.
func Simulate(first, second Combatant) (Combatant, []Turn) {
	c := NewCombat(first, second)
	var turns []Turn
	for {
		t, ok := c.Step()
		if !ok {
			break
		}
		turns = append(turns, t)
	}
	return c.Winner(), turns
}
