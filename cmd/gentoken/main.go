// cmd/gentoken/main.go: Emite un JWT de desarrollo firmado con JWT_SECRET.
// Uso: go run ./cmd/gentoken -rol administrador -horas 8
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"admincs/internal/config"
	"admincs/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	rol := flag.String("rol", middleware.RolOperador, "operador | administrador")
	usuario := flag.String("usuario", "dev", "username embebido en el token")
	horas := flag.Int("horas", 8, "vigencia en horas")
	flag.Parse()

	if *rol != middleware.RolOperador && *rol != middleware.RolAdministrador {
		log.Fatalf("rol invalido %q", *rol)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET no configurado")
	}

	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: *usuario,
		Rol:      *rol,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(*horas) * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("sign error: %v", err)
	}
	fmt.Println(token)
}
