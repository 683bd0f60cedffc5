package model

// MenuItem 主菜单选项
type MenuItem struct {
	Label string
	Key   string
}

// MenuItems 主菜单
var MenuItems = []MenuItem{
	{Label: "Local game (two players, one terminal)", Key: "1"},
	{Label: "Create online room", Key: "2"},
	{Label: "Join online room", Key: "3"},
	{Label: "Quit", Key: "q"},
}

const (
	MenuLocal = iota
	MenuCreate
	MenuJoin
	MenuQuit
)

// MenuModel 主菜单选中项
type MenuModel struct {
	selected int
}

func (m *MenuModel) Selected() int { return m.selected }

func (m *MenuModel) Up() {
	if m.selected > 0 {
		m.selected--
	}
}

func (m *MenuModel) Down() {
	if m.selected < len(MenuItems)-1 {
		m.selected++
	}
}

// Select 按快捷键选中，未知键返回 false
func (m *MenuModel) Select(key string) bool {
	for i, item := range MenuItems {
		if item.Key == key {
			m.selected = i
			return true
		}
	}
	return false
}
