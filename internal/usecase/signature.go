package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// VerifySignature は決済完了コールバックの署名を検証する。
// expected = hex(HMAC_SHA256(secret, orderID + "|" + paymentID))
//
// 入力が空なら ErrInvalidInput、計算できない（secret未設定など）なら ErrVerification。
// 不一致は (false, nil)。期待値やsecretはエラーにも含めない。
func VerifySignature(orderID, paymentID, signature, secret string) (bool, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return false, NewError(ErrInvalidInput, "orderId, paymentId and signature are required")
	}
	if secret == "" {
		return false, NewError(ErrVerification, "signing secret not configured")
	}

	expected, err := computeSignature(orderID, paymentID, secret)
	if err != nil {
		return false, WrapError(ErrVerification, "signature computation failed", err)
	}

	// 長さは入力から決まるので先に比べてよい
	if len(expected) != len(signature) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1, nil
}

// SignPayment はテストやゲートウェイのスタブ用に同じ署名を作る。
func SignPayment(orderID, paymentID, secret string) (string, error) {
	return computeSignature(orderID, paymentID, secret)
}

func computeSignature(orderID, paymentID, secret string) (string, error) {
	mac := hmac.New(sha256.New, []byte(secret))
	if _, err := mac.Write([]byte(orderID + "|" + paymentID)); err != nil {
		return "", err
	}
	return hex.EncodeToString(mac.Sum(nil)), nil
}
