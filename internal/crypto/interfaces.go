package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/password_hasher_mock.go -package=mock

// PasswordHasher хеширует пароли пользователей перед сохранением на сервере.
// Открытый пароль нигде не хранится и не логируется.
//
// Формат хеша (PHC string):
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// Параметры Argon2id записываются в сам хеш, поэтому их можно менять
// без миграции уже сохранённых паролей.
type PasswordHasher interface {
	// Hash возвращает хеш password со свежей случайной солью.
	Hash(password string) (string, error)

	// Verify сравнивает password с хешем за постоянное время.
	// Возвращает ErrMalformedHash, если encoded не разбирается.
	Verify(password, encoded string) (bool, error)
}
