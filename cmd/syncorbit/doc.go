// Command syncorbit analyzes and corrects subtitle timing drift against
// a trusted reference track, either for one pair or across a library.
package main
