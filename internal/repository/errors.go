package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	//version不一致（他の更新が先に入った）
	ErrConflict = errors.New("conflict")
)
