package model

import "github.com/golang-jwt/jwt"

type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}
