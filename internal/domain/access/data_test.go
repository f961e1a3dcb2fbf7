package access

import (
	"testing"

	"github.com/sentinel-health/auth-module/internal/domain/model"
)

func TestEditableData(t *testing.T) {
	data := map[string]model.DataValue{
		"name":    {Val: "Testy McTestface"},
		"account": {Val: "acc-1", Status: model.DataUndeletable},
		"secret":  {Val: "hidden", Status: model.DataUneditable},
	}

	view := EditableData(data)

	// Поле uneditable скрыто
	if _, ok := view["secret"]; ok {
		t.Error("поле uneditable попало в представление формы")
	}
	// Поле undeletable видно, но без возможности удаления
	acc, ok := view["account"]
	if !ok {
		t.Fatal("поле undeletable отсутствует в представлении формы")
	}
	if acc.Deletable {
		t.Error("поле undeletable помечено как удаляемое")
	}
	if acc.Val != "acc-1" {
		t.Errorf("account.Val = %q, хотели acc-1", acc.Val)
	}
	// Обычное поле — удаляемое
	name, ok := view["name"]
	if !ok {
		t.Fatal("обычное поле отсутствует в представлении формы")
	}
	if !name.Deletable {
		t.Error("обычное поле помечено как неудаляемое")
	}
}

func TestSetData(t *testing.T) {
	data := map[string]model.DataValue{
		"name":   {Val: "old", Status: model.DataUndeletable},
		"secret": {Val: "hidden", Status: model.DataUneditable},
	}

	// Новое поле
	data = SetData(data, "job", "Tester")
	if data["job"].Val != "Tester" {
		t.Errorf("job.Val = %q, хотели Tester", data["job"].Val)
	}

	// Редактирование undeletable разрешено, статус сохраняется
	data = SetData(data, "name", "new")
	if data["name"].Val != "new" {
		t.Errorf("name.Val = %q, хотели new", data["name"].Val)
	}
	if data["name"].Status != model.DataUndeletable {
		t.Errorf("name.Status = %q, статус потерян", data["name"].Status)
	}

	// Редактирование uneditable запрещено
	data = SetData(data, "secret", "leak")
	if data["secret"].Val != "hidden" {
		t.Errorf("secret.Val = %q, поле uneditable изменено", data["secret"].Val)
	}

	// nil-карта создаётся
	if d := SetData(nil, "k", "v"); d["k"].Val != "v" {
		t.Error("SetData(nil, ...) не создал карту")
	}
}

func TestDeleteData(t *testing.T) {
	data := map[string]model.DataValue{
		"name":    {Val: "x"},
		"account": {Val: "acc-1", Status: model.DataUndeletable},
		"secret":  {Val: "hidden", Status: model.DataUneditable},
	}

	data = DeleteData(data, "name")
	if _, ok := data["name"]; ok {
		t.Error("обычное поле не удалено")
	}

	data = DeleteData(data, "account")
	if _, ok := data["account"]; !ok {
		t.Error("поле undeletable удалено")
	}

	data = DeleteData(data, "secret")
	if _, ok := data["secret"]; !ok {
		t.Error("поле uneditable удалено")
	}

	// Отсутствующий ключ — no-op
	data = DeleteData(data, "ghost")
	if len(data) != 2 {
		t.Errorf("len = %d после удаления отсутствующего ключа", len(data))
	}
}

func TestMergeProtectedData(t *testing.T) {
	stored := map[string]model.DataValue{
		"account": {Val: "acc-1", Status: model.DataUndeletable},
		"secret":  {Val: "hidden", Status: model.DataUneditable},
		"plain":   {Val: "old"},
	}

	tests := []struct {
		name      string
		submitted map[string]model.DataValue
		check     func(t *testing.T, out map[string]model.DataValue)
	}{
		{
			name: "клиент потерял защищённые поля — они восстанавливаются",
			submitted: map[string]model.DataValue{
				"plain": {Val: "new"},
			},
			check: func(t *testing.T, out map[string]model.DataValue) {
				if out["account"].Val != "acc-1" || out["account"].Status != model.DataUndeletable {
					t.Errorf("account = %v, поле undeletable не восстановлено", out["account"])
				}
				if out["secret"].Val != "hidden" {
					t.Errorf("secret = %v, поле uneditable не восстановлено", out["secret"])
				}
				if out["plain"].Val != "new" {
					t.Errorf("plain = %v, правка клиента потеряна", out["plain"])
				}
			},
		},
		{
			name: "правка undeletable сохраняется, подмена uneditable отбрасывается",
			submitted: map[string]model.DataValue{
				"account": {Val: "acc-2"},
				"secret":  {Val: "forged", Status: "forged-status"},
			},
			check: func(t *testing.T, out map[string]model.DataValue) {
				if out["account"].Val != "acc-2" {
					t.Errorf("account.Val = %q, правка потеряна", out["account"].Val)
				}
				if out["account"].Status != model.DataUndeletable {
					t.Errorf("account.Status = %q, статус потерян", out["account"].Status)
				}
				if out["secret"].Val != "hidden" || out["secret"].Status != model.DataUneditable {
					t.Errorf("secret = %v, подмена uneditable прошла", out["secret"])
				}
			},
		},
		{
			name: "клиент не может назначить статус новому или обычному полю",
			submitted: map[string]model.DataValue{
				"plain": {Val: "new", Status: model.DataUneditable},
				"fresh": {Val: "x", Status: model.DataUndeletable},
			},
			check: func(t *testing.T, out map[string]model.DataValue) {
				if out["plain"].Status != "" {
					t.Errorf("plain.Status = %q, клиент назначил статус существующему полю", out["plain"].Status)
				}
				if out["fresh"].Status != "" {
					t.Errorf("fresh.Status = %q, клиент назначил статус новому полю", out["fresh"].Status)
				}
				if out["plain"].Val != "new" || out["fresh"].Val != "x" {
					t.Error("значения присланных полей потеряны")
				}
			},
		},
		{
			name: "обычное поле клиент может удалить",
			submitted: map[string]model.DataValue{
				"account": {Val: "acc-1", Status: model.DataUndeletable},
				"secret":  {Val: "hidden", Status: model.DataUneditable},
			},
			check: func(t *testing.T, out map[string]model.DataValue) {
				if _, ok := out["plain"]; ok {
					t.Error("удалённое клиентом обычное поле вернулось")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := MergeProtectedData(stored, tt.submitted)
			tt.check(t, out)
		})
	}
}
