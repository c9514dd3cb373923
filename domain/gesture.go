package domain

// HandSign は手印です。クライアントのジェスチャー認識が確定した1つの印を表します。
type HandSign string

const (
	SignRat    HandSign = "rat"
	SignOx     HandSign = "ox"
	SignTiger  HandSign = "tiger"
	SignRabbit HandSign = "rabbit"
	SignDragon HandSign = "dragon"
	SignSnake  HandSign = "snake"
	SignHorse  HandSign = "horse"
	SignRam    HandSign = "ram"
	SignMonkey HandSign = "monkey"
	SignBird   HandSign = "bird"
	SignDog    HandSign = "dog"
	SignBoar   HandSign = "boar"
)

// GestureBufferCap は保持する直近ジェスチャーの上限数です。
const GestureBufferCap = 10

// ValidSign は既知の手印かどうかを返します。
func ValidSign(s HandSign) bool {
	switch s {
	case SignRat, SignOx, SignTiger, SignRabbit, SignDragon, SignSnake,
		SignHorse, SignRam, SignMonkey, SignBird, SignDog, SignBoar:
		return true
	}
	return false
}
