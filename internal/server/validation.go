package server

import (
	"sync"

	"never-have-i-ever/internal/game"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("roomname", func(fl validator.FieldLevel) bool {
			_, err := game.ValidateRoomName(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("playername", func(fl validator.FieldLevel) bool {
			_, err := game.ValidatePlayerName(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
			_, err := game.ValidateUserID(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, err := game.ValidateCategory(fl.Field().String())
			return err == nil
		})
	})
}
