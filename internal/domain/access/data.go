package access

import "github.com/sentinel-health/auth-module/internal/domain/model"

// EditableField — представление поля дополнительных данных для формы
// редактирования.
type EditableField struct {
	// Val — текущее значение поля
	Val string `json:"val"`
	// Deletable — можно ли удалить поле
	Deletable bool `json:"deletable"`
}

// EditableData возвращает представление дополнительных данных для формы:
// поля uneditable скрываются полностью, поля undeletable показываются
// без возможности удаления.
func EditableData(data map[string]model.DataValue) map[string]EditableField {
	out := make(map[string]EditableField, len(data))
	for k, v := range data {
		if v.Status == model.DataUneditable {
			continue
		}
		out[k] = EditableField{
			Val:       v.Val,
			Deletable: v.Status != model.DataUndeletable,
		}
	}
	return out
}

// SetData записывает значение поля. Поле со статусом uneditable не меняется.
// Статус существующего поля сохраняется.
func SetData(data map[string]model.DataValue, key, val string) map[string]model.DataValue {
	if data == nil {
		data = map[string]model.DataValue{}
	}
	if existing, ok := data[key]; ok {
		if existing.Status == model.DataUneditable {
			return data
		}
		data[key] = model.DataValue{Val: val, Status: existing.Status}
		return data
	}
	data[key] = model.DataValue{Val: val}
	return data
}

// DeleteData удаляет поле. Поля со статусами undeletable и uneditable
// не удаляются.
func DeleteData(data map[string]model.DataValue, key string) map[string]model.DataValue {
	v, ok := data[key]
	if !ok {
		return data
	}
	if v.Status == model.DataUndeletable || v.Status == model.DataUneditable {
		return data
	}
	delete(data, key)
	return data
}

// MergeProtectedData применяет присланный черновик к сохранённым данным как
// набор операций SetData/DeleteData: присланные поля записываются, отсутствующие
// удаляются. Операции сами отказывают в изменении uneditable и в удалении
// защищённых полей, а статусы берутся только из сохранённой записи — клиент
// не может ни удалить, ни подменить защищённое поле, ни назначить статус.
func MergeProtectedData(stored, submitted map[string]model.DataValue) map[string]model.DataValue {
	out := make(map[string]model.DataValue, len(stored))
	for k, v := range stored {
		out[k] = v
	}
	for k, v := range submitted {
		out = SetData(out, k, v.Val)
	}
	for k := range stored {
		if _, ok := submitted[k]; !ok {
			out = DeleteData(out, k)
		}
	}
	return out
}
